// Package session owns the authentication capability and its lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/caffeinepub/insurance-inquiry/internal/errs"
	"github.com/caffeinepub/insurance-inquiry/internal/identity"
	"github.com/caffeinepub/insurance-inquiry/internal/model"
)

// State is the session lifecycle position.
type State int

const (
	StateIdle State = iota
	StateLoggingIn
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoggingIn:
		return "loggingIn"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Watcher observes capability changes. cap is nil after a clear. Watchers
// run synchronously so dependents (binding, cache) are consistent before
// the triggering call returns.
type Watcher func(cap *model.Capability)

// Manager is the process-wide owner of the capability. Only the Manager
// writes it; everyone else observes via Capability or a Watcher.
type Manager struct {
	provider identity.Provider

	mu    sync.Mutex
	state State
	cap   *model.Capability
	epoch uint64 // bumped on every clear; a login that straddles one is discarded

	watchers []Watcher
}

// NewManager constructs a Manager in the idle state.
func NewManager(provider identity.Provider) *Manager {
	return &Manager{provider: provider}
}

// OnChange registers a watcher. Register during wiring, before any login.
func (m *Manager) OnChange(w Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, w)
}

// State returns the current lifecycle position.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Capability returns the active capability, if any.
func (m *Manager) Capability() (model.Capability, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cap == nil {
		return model.Capability{}, false
	}
	return *m.cap, true
}

// Login runs the authentication flow. A concurrent login is rejected with
// ErrLoginInFlight; an existing capability fails with
// ErrAlreadyAuthenticated (callers that want clear-and-retry use
// ForceLogin). Any provider failure returns the session to idle.
func (m *Manager) Login(ctx context.Context) (model.Capability, error) {
	m.mu.Lock()
	switch m.state {
	case StateLoggingIn:
		m.mu.Unlock()
		return model.Capability{}, errs.ErrLoginInFlight
	case StateAuthenticated:
		m.mu.Unlock()
		return model.Capability{}, errs.ErrAlreadyAuthenticated
	}
	m.state = StateLoggingIn
	epoch := m.epoch
	m.mu.Unlock()

	cap, err := m.provider.Login(ctx)

	m.mu.Lock()
	if err != nil {
		if m.state == StateLoggingIn {
			m.state = StateIdle
		}
		m.mu.Unlock()
		if errors.Is(err, errs.ErrAuthenticationFailed) {
			return model.Capability{}, err
		}
		return model.Capability{}, fmt.Errorf("%w: %w", errs.ErrAuthenticationFailed, err)
	}
	if m.epoch != epoch {
		// cleared while logging in; the fresh capability must not win
		m.state = StateIdle
		m.mu.Unlock()
		_ = m.provider.Logout(ctx, cap)
		return model.Capability{}, fmt.Errorf("%w: session cleared during login", errs.ErrAuthenticationFailed)
	}
	c := cap
	m.cap = &c
	m.state = StateAuthenticated
	watchers := append([]Watcher(nil), m.watchers...)
	m.mu.Unlock()

	notify(watchers, &c)
	return c, nil
}

// Restore rehydrates a capability persisted by a prior login (CLI token
// store). Fails with ErrAlreadyAuthenticated when a capability is active.
func (m *Manager) Restore(cap model.Capability) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return errs.ErrAlreadyAuthenticated
	}
	c := cap
	m.cap = &c
	m.state = StateAuthenticated
	watchers := append([]Watcher(nil), m.watchers...)
	m.mu.Unlock()

	notify(watchers, &c)
	return nil
}

// ForceLogin is Login with the one permitted auto-recovery: on
// ErrAlreadyAuthenticated it clears and retries exactly once.
func (m *Manager) ForceLogin(ctx context.Context) (model.Capability, error) {
	cap, err := m.Login(ctx)
	if errors.Is(err, errs.ErrAlreadyAuthenticated) {
		m.Clear(ctx)
		return m.Login(ctx)
	}
	return cap, err
}

// Clear revokes the capability unconditionally and is idempotent. Watchers
// fire synchronously so every cached read keyed to the prior identity is
// invalidated before Clear returns.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	m.epoch++
	prior := m.cap
	m.cap = nil
	if m.state != StateLoggingIn {
		m.state = StateIdle
	}
	watchers := append([]Watcher(nil), m.watchers...)
	m.mu.Unlock()

	if prior == nil {
		return // already cleared; watchers stay quiet
	}
	_ = m.provider.Logout(ctx, *prior)
	notify(watchers, nil)
}

func notify(watchers []Watcher, cap *model.Capability) {
	for _, w := range watchers {
		w(cap)
	}
}
