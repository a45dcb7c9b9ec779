// Package billing reconciles the host application's notion of "this user
// is on plan P" with the state held by an external billing provider.
//
// The hard part is not calling the provider, it is deciding which call to
// make: given a customer ID, a subscription ID, or a one-time payment
// token, each operation performs exactly one provider action, interprets
// ambiguous responses (already canceled, not found, already subscribed),
// and returns an idempotent result. The engine is stateless between
// calls; the provider and the host application own all durable state.
//
// # Architecture
//
//   - Service: the reconciliation engine (Subscribe, Unsubscribe,
//     IsSubscribed, ExternalPlansStatus)
//   - ProviderClient: the outbound contract to the billing provider
//   - StripeClient: ProviderClient backed by the official Stripe SDK
//   - Disabled: explicit engine variant for hosts without a credential
//
// Provider "subscription not found" responses are a semantic carve-out,
// not errors: Unsubscribe treats them as already unsubscribed and
// IsSubscribed as false, because the desired end state already holds.
// Every other provider failure is logged at the point of catch and
// surfaced wrapped in ErrProvider; the engine never retries.
//
// # Quick Start
//
//	cfg, err := billing.LoadStripeConfig()
//	if err != nil {
//		svc := billing.Disabled("STRIPE_SECRET_KEY is not set")
//		// register svc; its calls fail with billing.ErrNotConfigured
//	}
//
//	stripeClient, err := billing.NewStripeClient(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc := billing.NewService(stripeClient)
//
//	// First subscription for a user: redeem the checkout token.
//	res, err := svc.Subscribe(ctx, billing.SubscribeParams{
//		Token:  "tok_visa",
//		Email:  "user@example.com",
//		UserID: "u_123",
//		Plan:   "price_gold_monthly",
//	})
//
//	// Persist res.CustomerID and res.SubscriptionID; later calls use
//	// the existing-customer shape and are safe to repeat.
//	res, err = svc.Subscribe(ctx, billing.SubscribeParams{
//		CustomerID: res.CustomerID,
//		Plan:       "price_gold_monthly",
//	})
//
// # Concurrency
//
// Independent operations may run concurrently; the only shared resource
// is the provider client handle, which is safe for concurrent use. The
// engine provides no cross-call ordering for the same customer. Callers
// racing Subscribe against Unsubscribe get the provider's last-write-wins
// outcome and must serialize at a higher layer if they need more.
package billing
