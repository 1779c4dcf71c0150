package mind

import (
	"context"
	"fmt"
	"sync"
)

// Manager manages named collaborator providers and guarantees a deterministic
// fallback: any call that the default provider cannot serve — missing,
// unconfigured, or erroring — is answered by the built-in local provider.
// Collaborator failure therefore never propagates to the engine as a fatal
// error.
type Manager struct {
	providers       map[string]Provider
	defaultProvider string
	local           *LocalProvider
	mu              sync.RWMutex
}

// NewManager creates a collaborator manager with the local provider built in.
func NewManager() *Manager {
	local := NewLocalProvider()
	return &Manager{
		providers: map[string]Provider{
			local.Name(): local,
		},
		defaultProvider: local.Name(),
		local:           local,
	}
}

// RegisterProvider registers a collaborator provider. The first non-local
// provider registered becomes the default.
func (m *Manager) RegisterProvider(provider Provider) error {
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	name := provider.Name()
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.providers[name] = provider

	if m.defaultProvider == ProviderLocal && name != ProviderLocal {
		m.defaultProvider = name
	}

	return nil
}

// GetProvider returns a provider by name.
func (m *Manager) GetProvider(name string) (Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	provider, exists := m.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider '%s' not found", name)
	}

	return provider, nil
}

// SetDefaultProvider sets the default provider.
func (m *Manager) SetDefaultProvider(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.providers[name]; !exists {
		return fmt.Errorf("provider '%s' not found", name)
	}

	m.defaultProvider = name
	return nil
}

// ListProviders returns all registered provider names.
func (m *Manager) ListProviders() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	return names
}

// active returns the provider calls should go to first.
func (m *Manager) active() Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	provider := m.providers[m.defaultProvider]
	if provider == nil || !provider.IsConfigured() {
		return m.local
	}
	return provider
}

// PlanRoute plans a route with the default provider, falling back to the
// local planner on failure.
func (m *Manager) PlanRoute(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	provider := m.active()

	result, err := provider.PlanRoute(ctx, req)
	if err == nil && result != nil {
		return result, nil
	}
	if provider == m.local {
		return result, err
	}

	return m.local.PlanRoute(ctx, req)
}

// InterpretPurpose interprets a purpose with the default provider, falling
// back to template guidance on failure.
func (m *Manager) InterpretPurpose(ctx context.Context, purpose string) (string, error) {
	provider := m.active()

	guidance, err := provider.InterpretPurpose(ctx, purpose)
	if err == nil {
		return guidance, nil
	}
	if provider == m.local {
		return guidance, err
	}

	return m.local.InterpretPurpose(ctx, purpose)
}

// InterpretHelp interprets a help request with the default provider, falling
// back to keyword matching on failure.
func (m *Manager) InterpretHelp(ctx context.Context, req HelpRequest) (*HelpResult, error) {
	provider := m.active()

	result, err := provider.InterpretHelp(ctx, req)
	if err == nil && result != nil {
		return result, nil
	}
	if provider == m.local {
		return result, err
	}

	return m.local.InterpretHelp(ctx, req)
}
