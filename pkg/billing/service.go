package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Service is the reconciliation engine: given partial and possibly stale
// local state, each operation decides and executes exactly one provider
// action and normalizes the response. The engine holds no state between
// calls; all durable state lives with the provider and the host
// application's own persistence.
type Service interface {
	// Subscribe reconciles "this user should be on this plan" with the
	// provider. With a customer ID it reuses or updates the existing
	// subscription for that plan (never double-subscribes); without one
	// it redeems the token into a new customer plus first subscription.
	Subscribe(ctx context.Context, params SubscribeParams) (*SubscribeResult, error)

	// Unsubscribe schedules a period-end cancellation and returns the
	// date it takes effect. A subscription the provider no longer knows
	// is already unsubscribed: the call succeeds with a nil date.
	Unsubscribe(ctx context.Context, subscriptionID string) (*time.Time, error)

	// IsSubscribed reports whether the subscription is active or
	// trialing. An empty or unknown ID is false, not an error.
	IsSubscribed(ctx context.Context, subscriptionID string) (bool, error)

	// ExternalPlansStatus lists all of the customer's subscriptions and
	// reduces them to a plan -> active mapping. A plan represented by
	// several records is active if any record for it is active.
	ExternalPlansStatus(ctx context.Context, customerID string) (map[string]bool, error)
}

// SubscribeParams is the union input to Subscribe. Exactly one shape must
// be satisfiable: an existing customer (CustomerID set) or a new one
// (Token, Email, UserID set). Neither CustomerID nor Token present is an
// input error, rejected before any provider call.
type SubscribeParams struct {
	CustomerID string
	Token      string
	Email      string
	UserID     string
	Plan       string
}

// SubscribeResult is the stable tuple the host application persists to
// represent a user's billing linkage. Once persisted, later Subscribe
// calls use the existing-customer shape.
type SubscribeResult struct {
	SubscriptionID string
	CustomerID     string
}

type service struct {
	client ProviderClient
	logger *slog.Logger
}

// NewService creates the reconciliation engine around a provider client.
// Panics if client is nil to fail fast during initialization. Use
// Disabled instead when no provider credential is configured.
func NewService(client ProviderClient, opts ...ServiceOption) Service {
	if client == nil {
		panic("billing: ProviderClient is required")
	}

	s := &service{
		client: client,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) Subscribe(ctx context.Context, params SubscribeParams) (*SubscribeResult, error) {
	if params.CustomerID != "" {
		return s.subscribeExisting(ctx, params)
	}

	if params.Token == "" {
		return nil, ErrTokenRequired
	}

	customer, err := s.client.CreateCustomer(ctx, CreateCustomerParams{
		Email:  params.Email,
		Token:  params.Token,
		Plan:   params.Plan,
		UserID: params.UserID,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create provider customer",
			slog.String("plan", params.Plan),
			slog.String("user_id", params.UserID),
			slog.Any("error", err))
		return nil, errors.Join(ErrProvider, err)
	}

	return &SubscribeResult{
		SubscriptionID: customer.SubscriptionID,
		CustomerID:     customer.ID,
	}, nil
}

// subscribeExisting reuses or updates the customer's subscription for the
// target plan. Updating in place is what clears a pending period-end
// cancellation: resubscribing to the same plan before the period ends is
// a silent undo-cancel, not a new charge.
func (s *service) subscribeExisting(ctx context.Context, params SubscribeParams) (*SubscribeResult, error) {
	existing, err := s.client.ListSubscriptions(ctx, params.CustomerID, params.Plan)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list provider subscriptions",
			slog.String("customer_id", params.CustomerID),
			slog.String("plan", params.Plan),
			slog.Any("error", err))
		return nil, errors.Join(ErrProvider, err)
	}

	var sub *Subscription
	if len(existing) > 0 {
		sub, err = s.client.UpdateSubscription(ctx, existing[0].ID, params.Plan, 1)
	} else {
		sub, err = s.client.CreateSubscription(ctx, params.CustomerID, params.Plan)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to reconcile provider subscription",
			slog.String("customer_id", params.CustomerID),
			slog.String("plan", params.Plan),
			slog.Any("error", err))
		return nil, errors.Join(ErrProvider, err)
	}

	return &SubscribeResult{
		SubscriptionID: sub.ID,
		CustomerID:     params.CustomerID,
	}, nil
}

func (s *service) Unsubscribe(ctx context.Context, subscriptionID string) (*time.Time, error) {
	sub, err := s.client.CancelAtPeriodEnd(ctx, subscriptionID)
	if err != nil {
		// The desired end state already holds.
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "failed to cancel provider subscription",
			slog.String("subscription_id", subscriptionID),
			slog.Any("error", err))
		return nil, errors.Join(ErrProvider, err)
	}

	return sub.CancelEffectiveAt(), nil
}

func (s *service) IsSubscribed(ctx context.Context, subscriptionID string) (bool, error) {
	if subscriptionID == "" {
		return false, nil
	}

	sub, err := s.client.GetSubscription(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return false, nil
		}
		s.logger.ErrorContext(ctx, "failed to retrieve provider subscription",
			slog.String("subscription_id", subscriptionID),
			slog.Any("error", err))
		return false, errors.Join(ErrProvider, err)
	}

	return sub.IsSubscribed(), nil
}

func (s *service) ExternalPlansStatus(ctx context.Context, customerID string) (map[string]bool, error) {
	subs, err := s.client.ListCustomerSubscriptions(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list customer subscriptions",
			slog.String("customer_id", customerID),
			slog.Any("error", err))
		return nil, errors.Join(ErrProvider, err)
	}

	status := make(map[string]bool, len(subs))
	for _, sub := range subs {
		// A plan listed more than once is active if any record for it is
		// active: never let a later inactive record overwrite true.
		if active, seen := status[sub.Plan]; !seen || !active {
			status[sub.Plan] = sub.Status == StatusActive
		}
	}

	return status, nil
}
