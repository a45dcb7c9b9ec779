package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/planskit/pkg/billing"
)

var (
	ErrOptionsRequired = errors.New("checkout display options required, either per call or in the plan catalog")
	ErrInvalidOptions  = errors.New("invalid checkout display options")
	ErrPlanNotFound    = errors.New("plan not found in checkout catalog")
)

// Token is the provider-issued, one-time payment-method reference produced
// by the hosted checkout UI. It expires if not redeemed promptly and can
// be redeemed exactly once.
type Token struct {
	ID    string
	Email string
}

// TokenFunc receives the token once the hosted checkout completes.
type TokenFunc func(token Token)

// Opener abstracts the hosted checkout UI. Open presents the interactive
// form and returns without blocking; completion is signaled asynchronously
// through the token callback. The UI itself is an external collaborator.
type Opener interface {
	Open(ctx context.Context, opts Options, onToken TokenFunc) error
}

// Options are the display options for the hosted checkout form.
type Options struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Amount      int64  `yaml:"amount"` // smallest currency unit
	Email       string `yaml:"-"`
	Currency    string `yaml:"currency,omitempty"`
	PanelLabel  string `yaml:"panel_label,omitempty"`
	ZipCode     bool   `yaml:"zip_code,omitempty"`
	Bitcoin     bool   `yaml:"bitcoin,omitempty"`
}

// Validate checks the minimum the hosted form needs: a display name and
// a positive amount.
func (o Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidOptions)
	}
	if o.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidOptions)
	}
	return nil
}

// Attributes are extra attributes forwarded to the subscribe call.
type Attributes struct {
	UserID string
}

// Result is delivered to the callback when the subscribe round-trip
// resolves successfully.
type Result struct {
	Plan         string
	Email        string
	Subscription *billing.SubscribeResult
}

// Callback is invoked exactly once per completed checkout, with either a
// result or an error.
type Callback func(result *Result, err error)

// EmailResolver returns the authenticated identity's email, used to
// autofill the checkout form when the caller does not supply one.
type EmailResolver func(ctx context.Context) (string, bool)

// Session is the per-checkout context. Every Pay call owns its own
// session, so concurrent or repeated checkout attempts never share
// pending state.
type Session struct {
	ID      uuid.UUID
	Plan    string
	Options Options

	attrs    Attributes
	callback Callback
}

// Initiator collects payment tokens through a hosted checkout UI and
// defers the actual subscription decision to the billing engine. It owns
// no billing state.
type Initiator struct {
	engine   billing.Service
	opener   Opener
	catalog  *Catalog
	resolver EmailResolver
	logger   *slog.Logger
}

// Option configures an Initiator.
type Option func(*Initiator)

// WithCatalog sets a plan catalog so Pay can be called with zero Options
// for cataloged plans.
func WithCatalog(catalog *Catalog) Option {
	return func(i *Initiator) {
		i.catalog = catalog
	}
}

// WithEmailResolver sets the resolver used to autofill the billing email
// from the current authenticated identity.
func WithEmailResolver(resolver EmailResolver) Option {
	return func(i *Initiator) {
		if resolver != nil {
			i.resolver = resolver
		}
	}
}

// WithLogger sets a custom logger. Nil loggers are ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Initiator) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewInitiator creates a checkout initiator. Panics if engine or opener
// is nil to fail fast during initialization.
func NewInitiator(engine billing.Service, opener Opener, opts ...Option) *Initiator {
	if engine == nil {
		panic("checkout: billing.Service is required")
	}
	if opener == nil {
		panic("checkout: Opener is required")
	}

	i := &Initiator{
		engine: engine,
		opener: opener,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Pay opens the hosted checkout UI for the given plan and returns the
// session tracking this attempt. The call does not block on payment:
// once the UI issues a token, the session forwards it to the billing
// engine and invokes the callback with the outcome.
//
// Zero-valued opts are resolved from the plan catalog when one is
// configured. The billing email is autofilled from the authenticated
// identity when not supplied.
func (i *Initiator) Pay(ctx context.Context, plan string, opts Options, attrs Attributes, callback Callback) (*Session, error) {
	if opts == (Options{}) {
		if i.catalog == nil {
			return nil, ErrOptionsRequired
		}
		cataloged, err := i.catalog.Options(plan)
		if err != nil {
			return nil, err
		}
		opts = cataloged
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Email == "" && i.resolver != nil {
		if email, ok := i.resolver(ctx); ok {
			opts.Email = email
		}
	}

	session := &Session{
		ID:       uuid.New(),
		Plan:     plan,
		Options:  opts,
		attrs:    attrs,
		callback: callback,
	}

	if err := i.opener.Open(ctx, opts, func(token Token) {
		i.complete(ctx, session, token)
	}); err != nil {
		return nil, err
	}

	return session, nil
}

// complete forwards the token to the billing engine and delivers the
// outcome to the session's callback.
func (i *Initiator) complete(ctx context.Context, session *Session, token Token) {
	email := token.Email
	if email == "" {
		email = session.Options.Email
	}

	result, err := i.engine.Subscribe(ctx, billing.SubscribeParams{
		Token:  token.ID,
		Email:  email,
		UserID: session.attrs.UserID,
		Plan:   session.Plan,
	})
	if err != nil {
		i.logger.ErrorContext(ctx, "checkout subscribe failed",
			slog.String("session_id", session.ID.String()),
			slog.String("plan", session.Plan),
			slog.Any("error", err))
		if session.callback != nil {
			session.callback(nil, err)
		}
		return
	}

	if session.callback != nil {
		session.callback(&Result{
			Plan:         session.Plan,
			Email:        email,
			Subscription: result,
		}, nil)
	}
}
