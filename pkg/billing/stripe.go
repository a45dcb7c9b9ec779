package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/subscription"
)

// StripeConfig holds configuration for the Stripe provider client.
type StripeConfig struct {
	SecretKey string `env:"STRIPE_SECRET_KEY,required"`
}

// LoadStripeConfig reads StripeConfig from the environment, loading a
// .env file first when one exists.
func LoadStripeConfig() (StripeConfig, error) {
	// The .env file is optional.
	_ = godotenv.Load()
	return env.ParseAs[StripeConfig]()
}

// StripeClient implements ProviderClient on top of the official Stripe
// SDK. The underlying API handle is safe for concurrent use and is
// configured exactly once from the secret key.
type StripeClient struct {
	api *client.API
}

var _ ProviderClient = (*StripeClient)(nil)

// NewStripeClient creates a Stripe-backed provider client.
func NewStripeClient(config StripeConfig) (*StripeClient, error) {
	if config.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &StripeClient{
		api: client.New(config.SecretKey, nil),
	}, nil
}

// CreateCustomer creates the customer and its first subscription. The
// legacy Stripe API accepted a plan argument on customer creation; the
// current API requires two requests, sequenced here so callers still see
// one logical call.
func (c *StripeClient) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error) {
	customerParams := &stripe.CustomerParams{
		Email:  stripe.String(params.Email),
		Source: stripe.String(params.Token),
	}
	customerParams.Context = ctx
	customerParams.AddMetadata("user_id", params.UserID)

	customer, err := c.api.Customers.New(customerParams)
	if err != nil {
		return nil, err
	}

	subParams := &stripe.SubscriptionParams{
		Customer: stripe.String(customer.ID),
		Items: []*stripe.SubscriptionItemsParams{{
			Price:    stripe.String(params.Plan),
			Quantity: stripe.Int64(1),
		}},
	}
	subParams.Context = ctx

	sub, err := c.api.Subscriptions.New(subParams)
	if err != nil {
		// The token was consumed by the customer create and cannot be
		// redeemed again. Drop the half-created customer, best effort,
		// so a retry with a fresh token starts clean instead of piling
		// up orphan customers at the provider.
		delParams := &stripe.CustomerParams{}
		delParams.Context = ctx
		_, _ = c.api.Customers.Del(customer.ID, delParams)
		return nil, err
	}

	return &Customer{
		ID:             customer.ID,
		SubscriptionID: sub.ID,
	}, nil
}

func (c *StripeClient) ListSubscriptions(ctx context.Context, customerID, plan string) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Price:    stripe.String(plan),
	}
	params.Context = ctx

	return c.collect(c.api.Subscriptions.List(params))
}

func (c *StripeClient) CreateSubscription(ctx context.Context, customerID, plan string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{{
			Price:    stripe.String(plan),
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx

	sub, err := c.api.Subscriptions.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripeSubscription(sub), nil
}

// UpdateSubscription swaps the subscription onto the plan and resets the
// quantity. cancel_at_period_end is cleared explicitly: the legacy API
// dropped a pending cancellation as a side effect of any update, the
// current one does not.
func (c *StripeClient) UpdateSubscription(ctx context.Context, subscriptionID, plan string, quantity int64) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{{
			Price:    stripe.String(plan),
			Quantity: stripe.Int64(quantity),
		}},
		CancelAtPeriodEnd: stripe.Bool(false),
	}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, classifySubscriptionErr(err)
	}
	return fromStripeSubscription(sub), nil
}

func (c *StripeClient) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, classifySubscriptionErr(err)
	}
	return fromStripeSubscription(sub), nil
}

func (c *StripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, classifySubscriptionErr(err)
	}
	return fromStripeSubscription(sub), nil
}

func (c *StripeClient) ListCustomerSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		// Stripe omits canceled subscriptions unless asked for all; the
		// aggregate status reduction needs the inactive records too.
		Status: stripe.String("all"),
	}
	params.Context = ctx

	return c.collect(c.api.Subscriptions.List(params))
}

func (c *StripeClient) collect(iter *subscription.Iter) ([]Subscription, error) {
	var subs []Subscription
	for iter.Next() {
		subs = append(subs, *fromStripeSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func fromStripeSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:                sub.ID,
		Status:            Status(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.Plan = sub.Items.Data[0].Price.ID
	}
	return out
}

// classifySubscriptionErr wraps provider not-found responses in
// ErrSubscriptionNotFound so the engine can branch on errors.Is without
// knowing Stripe's error surface.
func classifySubscriptionErr(err error) error {
	if isSubscriptionNotFound(err) {
		return errors.Join(ErrSubscriptionNotFound, err)
	}
	return err
}

// isSubscriptionNotFound classifies on Stripe's structured error code,
// falling back to the two message patterns older API versions produced
// for untyped errors.
func isSubscriptionNotFound(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Code == stripe.ErrorCodeResourceMissing
	}

	msg := err.Error()
	return strings.Contains(msg, "does not have a subscription with ID") ||
		strings.Contains(msg, "No such subscription")
}
