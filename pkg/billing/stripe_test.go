package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// newStubbedStripeClient builds a StripeClient whose API handle talks to
// the given handler instead of the live provider.
func newStubbedStripeClient(t *testing.T, handler http.Handler) *StripeClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:           stripe.String(server.URL),
		HTTPClient:    server.Client(),
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelError},
	})

	return &StripeClient{
		api: client.New("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend}),
	}
}

func TestNewStripeClient(t *testing.T) {
	t.Parallel()

	t.Run("requires a secret key", func(t *testing.T) {
		t.Parallel()

		client, err := NewStripeClient(StripeConfig{})
		require.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Nil(t, client)
	})

	t.Run("builds a client from the secret key", func(t *testing.T) {
		t.Parallel()

		client, err := NewStripeClient(StripeConfig{SecretKey: "sk_test_123"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestLoadStripeConfig(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")

	cfg, err := LoadStripeConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk_test_123", cfg.SecretKey)
}

func TestStripeClientCreateCustomer(t *testing.T) {
	t.Parallel()

	t.Run("creates the customer and first subscription", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1/customers", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "a@x.com", r.PostForm.Get("email"))
			assert.Equal(t, "tok_1", r.PostForm.Get("source"))
			assert.Equal(t, "u1", r.PostForm.Get("metadata[user_id]"))
			fmt.Fprint(w, `{"id":"cus_1","object":"customer","email":"a@x.com"}`)
		})
		mux.HandleFunc("POST /v1/subscriptions", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "cus_1", r.PostForm.Get("customer"))
			assert.Equal(t, "gold", r.PostForm.Get("items[0][price]"))
			fmt.Fprint(w, `{"id":"sub_1","object":"subscription","status":"active","customer":"cus_1"}`)
		})

		stripeClient := newStubbedStripeClient(t, mux)

		customer, err := stripeClient.CreateCustomer(context.Background(), CreateCustomerParams{
			Email:  "a@x.com",
			Token:  "tok_1",
			Plan:   "gold",
			UserID: "u1",
		})
		require.NoError(t, err)
		assert.Equal(t, "cus_1", customer.ID)
		assert.Equal(t, "sub_1", customer.SubscriptionID)
	})

	t.Run("drops the customer when the subscription create fails", func(t *testing.T) {
		t.Parallel()

		deleted := false
		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1/customers", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id":"cus_1","object":"customer"}`)
		})
		mux.HandleFunc("POST /v1/subscriptions", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			fmt.Fprint(w, `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`)
		})
		mux.HandleFunc("DELETE /v1/customers/cus_1", func(w http.ResponseWriter, r *http.Request) {
			deleted = true
			fmt.Fprint(w, `{"id":"cus_1","object":"customer","deleted":true}`)
		})

		stripeClient := newStubbedStripeClient(t, mux)

		customer, err := stripeClient.CreateCustomer(context.Background(), CreateCustomerParams{
			Email: "a@x.com",
			Token: "tok_1",
			Plan:  "gold",
		})
		require.Error(t, err)
		assert.Nil(t, customer)
		assert.True(t, deleted, "the half-created customer should be removed")
	})
}

func TestStripeClientListCustomerSubscriptions(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cus_1", r.URL.Query().Get("customer"))
		assert.Equal(t, "all", r.URL.Query().Get("status"))
		fmt.Fprint(w, `{"object":"list","url":"/v1/subscriptions","has_more":false,"data":[
			{"id":"sub_old","object":"subscription","status":"canceled","customer":"cus_1",
			 "items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":{"id":"gold","object":"price"}}]}},
			{"id":"sub_new","object":"subscription","status":"active","customer":"cus_1","current_period_end":1700000000,
			 "items":{"object":"list","data":[{"id":"si_2","object":"subscription_item","price":{"id":"gold","object":"price"}}]}}
		]}`)
	})

	stripeClient := newStubbedStripeClient(t, mux)

	subs, err := stripeClient.ListCustomerSubscriptions(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "sub_old", subs[0].ID)
	assert.Equal(t, StatusCanceled, subs[0].Status)
	assert.Equal(t, "gold", subs[0].Plan)
	assert.Equal(t, "sub_new", subs[1].ID)
	assert.Equal(t, StatusActive, subs[1].Status)
	assert.Equal(t, int64(1700000000), subs[1].CurrentPeriodEnd)
	assert.Equal(t, "cus_1", subs[1].CustomerID)
}

func TestStripeClientGetSubscription(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/subscriptions/sub_gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such subscription: 'sub_gone'"}}`)
	})

	stripeClient := newStubbedStripeClient(t, mux)

	sub, err := stripeClient.GetSubscription(context.Background(), "sub_gone")
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
	assert.Nil(t, sub)
}

func TestIsSubscriptionNotFound(t *testing.T) {
	t.Parallel()

	t.Run("structured resource_missing code", func(t *testing.T) {
		t.Parallel()

		err := &stripe.Error{
			Type: stripe.ErrorTypeInvalidRequest,
			Code: stripe.ErrorCodeResourceMissing,
			Msg:  "No such subscription: 'sub_gone'",
		}
		assert.True(t, isSubscriptionNotFound(err))
	})

	t.Run("structured code wins over the message", func(t *testing.T) {
		t.Parallel()

		// A structured error with a different code is not a not-found,
		// whatever its message says.
		err := &stripe.Error{
			Type: stripe.ErrorTypeAPI,
			Code: stripe.ErrorCodeRateLimit,
			Msg:  "No such subscription backlog",
		}
		assert.False(t, isSubscriptionNotFound(err))
	})

	t.Run("legacy message fallback", func(t *testing.T) {
		t.Parallel()

		assert.True(t, isSubscriptionNotFound(
			errors.New("Customer cus_1 does not have a subscription with ID sub_1")))
		assert.True(t, isSubscriptionNotFound(
			errors.New("No such subscription: sub_1")))
		assert.False(t, isSubscriptionNotFound(
			errors.New("request rate limited")))
	})

	t.Run("classification wraps the sentinel", func(t *testing.T) {
		t.Parallel()

		cause := &stripe.Error{Code: stripe.ErrorCodeResourceMissing, Msg: "No such subscription"}
		err := classifySubscriptionErr(cause)
		require.ErrorIs(t, err, ErrSubscriptionNotFound)

		other := errors.New("connection reset")
		assert.Equal(t, other, classifySubscriptionErr(other))
	})
}
