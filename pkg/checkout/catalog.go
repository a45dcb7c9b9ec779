package checkout

import (
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog holds per-plan checkout display options defined up front, so
// callers can start a checkout flow for a known plan without repeating
// its display options at every call site.
type Catalog struct {
	mu    sync.RWMutex
	plans map[string]Options
}

// NewCatalog returns a catalog with a copy of the given plan options.
func NewCatalog(plans map[string]Options) *Catalog {
	copied := make(map[string]Options, len(plans))
	for plan, opts := range plans {
		copied[plan] = opts
	}
	return &Catalog{plans: copied}
}

// LoadCatalog reads plan options from YAML, keyed by plan identifier:
//
//	gold:
//	  name: Gold Plan
//	  amount: 1999
//	  currency: usd
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var plans map[string]Options
	if err := yaml.NewDecoder(r).Decode(&plans); err != nil {
		return nil, fmt.Errorf("checkout: failed to parse plan catalog: %w", err)
	}

	for plan, opts := range plans {
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("plan %q: %w", plan, err)
		}
	}

	return NewCatalog(plans), nil
}

// Options returns the display options registered for the plan.
func (c *Catalog) Options(plan string) (Options, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	opts, ok := c.plans[plan]
	if !ok {
		return Options{}, fmt.Errorf("%w: %s", ErrPlanNotFound, plan)
	}
	return opts, nil
}

// Register sets or replaces the display options for a plan.
func (c *Catalog) Register(plan string, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[plan] = opts
	return nil
}
