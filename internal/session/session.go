// Package session tracks the current authenticated identity and notifies
// subscribers of session transitions. The manager is constructed explicitly
// and handed to the components that depend on it; there is no ambient
// process-wide state.
package session

import "sync"

// Identity describes an authenticated user.
type Identity struct {
	UserID string
	Email  string
}

// Listener receives session-change notifications. The identity is nil
// after a transition to the unauthenticated state.
type Listener func(identity *Identity)

// Manager holds the current session and the subscribed listeners.
// Listeners registered via Subscribe stay registered for the manager's
// lifetime and are invoked synchronously on every transition.
type Manager struct {
	mu        sync.Mutex
	current   *Identity
	listeners []Listener
}

// New returns a Manager with no current session.
func New() *Manager {
	return &Manager{}
}

// Current returns the identity of the active session, or nil when there
// is none.
func (m *Manager) Current() *Identity {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	identity := *m.current

	return &identity
}

// Subscribe registers a listener for session-change notifications.
func (m *Manager) Subscribe(listener Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, listener)
}

// SignIn records a transition to the authenticated state and notifies
// all listeners with the new identity.
func (m *Manager) SignIn(identity Identity) {
	m.mu.Lock()
	m.current = &identity
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(&identity)
	}
}

// SignOut records a transition to the unauthenticated state and notifies
// all listeners with a nil identity.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.current = nil
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(nil)
	}
}
