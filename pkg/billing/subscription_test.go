package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planskit/pkg/billing"
)

func TestSubscriptionIsSubscribed(t *testing.T) {
	t.Parallel()

	subscribed := []billing.Status{billing.StatusActive, billing.StatusTrialing}
	for _, status := range subscribed {
		sub := &billing.Subscription{ID: "sub_1", Status: status}
		assert.True(t, sub.IsSubscribed(), "status %s should count as subscribed", status)
	}

	notSubscribed := []billing.Status{
		billing.StatusPastDue,
		billing.StatusCanceled,
		billing.StatusUnpaid,
		billing.StatusIncomplete,
		billing.Status("paused"),
	}
	for _, status := range notSubscribed {
		sub := &billing.Subscription{ID: "sub_1", Status: status}
		assert.False(t, sub.IsSubscribed(), "status %s should not count as subscribed", status)
	}
}

func TestSubscriptionCancelEffectiveAt(t *testing.T) {
	t.Parallel()

	t.Run("pending cancellation with a period end", func(t *testing.T) {
		t.Parallel()

		sub := &billing.Subscription{
			ID:                "sub_1",
			CancelAtPeriodEnd: true,
			CurrentPeriodEnd:  1700000000,
		}

		at := sub.CancelEffectiveAt()
		require.NotNil(t, at)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), *at)
	})

	t.Run("no pending cancellation", func(t *testing.T) {
		t.Parallel()

		sub := &billing.Subscription{ID: "sub_1", CurrentPeriodEnd: 1700000000}
		assert.Nil(t, sub.CancelEffectiveAt())
	})

	t.Run("no period end", func(t *testing.T) {
		t.Parallel()

		sub := &billing.Subscription{ID: "sub_1", CancelAtPeriodEnd: true}
		assert.Nil(t, sub.CancelEffectiveAt())
	})
}
