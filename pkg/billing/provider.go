package billing

import "context"

// ProviderClient is the outbound contract to the billing provider.
// Implementations wrap the provider's official SDK and handle
// provider-specific quirks internally (request sequencing, parameter
// naming, pagination). The handle must be safe for concurrent use and
// is configured once at construction; the engine never reconfigures it.
//
// Not-found classification: methods that operate on a subscription ID
// return an error wrapping ErrSubscriptionNotFound when the provider
// reports the record as missing. Implementations should classify on the
// provider's structured error code where one exists and fall back to
// message matching only when it does not. The engine itself only checks
// errors.Is(err, ErrSubscriptionNotFound).
type ProviderClient interface {
	// CreateCustomer creates a customer record and its first subscription
	// on the given plan in one logical call. The token is a one-time
	// payment-method reference; replaying it fails at the provider.
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error)

	// ListSubscriptions returns the customer's subscriptions filtered by plan.
	ListSubscriptions(ctx context.Context, customerID, plan string) ([]Subscription, error)

	// CreateSubscription enrolls an existing customer in a plan.
	CreateSubscription(ctx context.Context, customerID, plan string) (*Subscription, error)

	// UpdateSubscription sets the subscription's plan and quantity and
	// clears any pending period-end cancellation.
	UpdateSubscription(ctx context.Context, subscriptionID, plan string, quantity int64) (*Subscription, error)

	// CancelAtPeriodEnd schedules the subscription to stop renewing at the
	// end of the current paid period. Billing continues until then.
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*Subscription, error)

	// GetSubscription retrieves a single subscription by ID.
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// ListCustomerSubscriptions returns all of the customer's
	// subscriptions regardless of status, including canceled ones.
	ListCustomerSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
}

// CreateCustomerParams contains the data for creating a customer together
// with its first subscription.
type CreateCustomerParams struct {
	Email  string // billing email captured by the checkout UI
	Token  string // one-time payment-method token
	Plan   string // provider's plan/price ID for the first subscription
	UserID string // host application's user ID, stored as provider metadata
}
