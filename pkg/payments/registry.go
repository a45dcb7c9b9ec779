// Package payments holds the named registry the host application
// dispatches billing operations through. Services register under a
// provider name ("stripe") at startup; hosts without a credential
// register billing.Disabled so callers get an explicit typed failure
// instead of a silently missing capability.
package payments

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrymomot/planskit/pkg/billing"
)

var ErrServiceNotRegistered = errors.New("payment service not registered")

// Registry maps a provider name to its billing service.
type Registry struct {
	mu       sync.RWMutex
	services map[string]billing.Service
}

// NewRegistry returns a new, empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]billing.Service),
	}
}

// Register adds a service under the given name. Panics on empty names,
// nil services, or duplicate registration: services register once at
// startup, and overwriting one mid-process would swap the credential out
// from under in-flight operations.
func (r *Registry) Register(name string, svc billing.Service) {
	if name == "" {
		panic("payments: service name cannot be empty")
	}
	if svc == nil {
		panic(fmt.Sprintf("payments: service %q cannot be nil", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		panic(fmt.Sprintf("payments: service %q already registered", name))
	}
	r.services[name] = svc
}

// Get returns the service registered under the given name.
func (r *Registry) Get(name string) (billing.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotRegistered, name)
	}
	return svc, nil
}

// Names returns the registered service names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	return names
}
