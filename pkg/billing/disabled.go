package billing

import (
	"context"
	"fmt"
	"time"
)

// Disabled returns a Service variant for hosts running without a provider
// credential. Every operation fails with ErrNotConfigured, carrying the
// given reason, so callers see an explicit typed failure instead of a
// silently missing capability.
func Disabled(reason string) Service {
	return &disabledService{reason: reason}
}

type disabledService struct {
	reason string
}

func (s *disabledService) err() error {
	if s.reason == "" {
		return ErrNotConfigured
	}
	return fmt.Errorf("%w: %s", ErrNotConfigured, s.reason)
}

func (s *disabledService) Subscribe(ctx context.Context, params SubscribeParams) (*SubscribeResult, error) {
	return nil, s.err()
}

func (s *disabledService) Unsubscribe(ctx context.Context, subscriptionID string) (*time.Time, error) {
	return nil, s.err()
}

func (s *disabledService) IsSubscribed(ctx context.Context, subscriptionID string) (bool, error) {
	return false, s.err()
}

func (s *disabledService) ExternalPlansStatus(ctx context.Context, customerID string) (map[string]bool, error) {
	return nil, s.err()
}
