package billing

import "time"

// Status represents the provider-side state of a subscription.
type Status string

const (
	StatusActive     Status = "active"
	StatusTrialing   Status = "trialing"
	StatusPastDue    Status = "past_due"
	StatusCanceled   Status = "canceled"
	StatusUnpaid     Status = "unpaid"
	StatusIncomplete Status = "incomplete"
)

// Subscription is the engine's view of a provider subscription record.
// It carries only the fields the reconciliation decisions depend on.
type Subscription struct {
	ID                string
	CustomerID        string
	Plan              string // provider's plan/price ID
	Status            Status
	CancelAtPeriodEnd bool
	CurrentPeriodEnd  int64 // epoch seconds, 0 when the provider omits it
}

// IsSubscribed reports whether the record counts as subscribed.
// Exactly active and trialing qualify; past_due, canceled, unpaid,
// incomplete and any future provider status do not.
func (s *Subscription) IsSubscribed() bool {
	return s.Status == StatusActive || s.Status == StatusTrialing
}

// CancelEffectiveAt returns the date the scheduled cancellation takes
// effect, or nil when no period-end cancellation is pending.
func (s *Subscription) CancelEffectiveAt() *time.Time {
	if !s.CancelAtPeriodEnd || s.CurrentPeriodEnd <= 0 {
		return nil
	}
	t := time.Unix(s.CurrentPeriodEnd, 0).UTC()
	return &t
}

// Customer is the engine's view of a provider customer record, captured
// at creation time together with the first subscription the provider
// attached to it.
type Customer struct {
	ID             string
	SubscriptionID string
}
