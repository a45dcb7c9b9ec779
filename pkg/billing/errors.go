package billing

import "errors"

var (
	// Input errors detected before any provider call.
	ErrTokenRequired = errors.New("payment token required when no customer exists yet")

	// ErrProvider wraps any provider call that failed for a reason other
	// than the recognized not-found classification.
	ErrProvider = errors.New("billing provider request failed")

	// ErrSubscriptionNotFound is the classification sentinel provider
	// clients wrap when the provider reports a missing subscription.
	// Unsubscribe and IsSubscribed convert it to a success value.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrNotConfigured is returned by the disabled engine variant used
	// when no provider credential is configured.
	ErrNotConfigured = errors.New("billing provider is not configured")

	ErrMissingAPIKey = errors.New("billing provider API key is required")
)
