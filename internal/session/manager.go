package session

import (
	"sync"
	"time"
)

// Session is the client's belief, derived from the persisted token, that a
// user is authenticated and what role they hold.
type Session struct {
	Username string
	IsAdmin  bool
	Token    string
}

// Manager owns the persisted token and the in-memory session. Exactly one
// flow (login) writes it; everything else reads. Any read of Current
// reflects the latest Establish/Teardown call.
type Manager struct {
	mu       sync.RWMutex
	store    TokenStore
	current  *Session
	onChange []func(*Session)

	// now is a test seam for the expiry check.
	now func() time.Time
}

func NewManager(store TokenStore) *Manager {
	return &Manager{store: store, now: time.Now}
}

// OnChange registers a callback invoked after every session change
// (restore, establish, teardown) with the new session, nil meaning logged
// out. Callbacks run outside the manager's lock.
func (m *Manager) OnChange(fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Restore loads the persisted token, decodes its payload without verifying
// the signature, and establishes the in-memory session if the token is
// well-formed and unexpired. A malformed or expired token clears the slot
// and resolves to logged out; this is absence of session, not an error.
// Restore must complete before any session-gated view is rendered.
func (m *Manager) Restore() *Session {
	m.mu.Lock()

	token, err := m.store.Load()
	if err != nil || token == "" {
		m.mu.Unlock()
		return nil
	}

	claims, err := decodeClaims(token)
	if err != nil || claims.expired(m.now().UnixMilli()) {
		_ = m.store.Clear()
		m.current = nil
		m.mu.Unlock()
		return nil
	}

	m.current = &Session{Username: claims.Username, IsAdmin: claims.IsAdmin, Token: token}
	s := *m.current
	m.mu.Unlock()

	m.notify(&s)
	return &s
}

// Establish persists the token and sets the in-memory session.
func (m *Manager) Establish(token, username string, isAdmin bool) error {
	m.mu.Lock()
	if err := m.store.Save(token); err != nil {
		m.mu.Unlock()
		return err
	}
	m.current = &Session{Username: username, IsAdmin: isAdmin, Token: token}
	s := *m.current
	m.mu.Unlock()

	m.notify(&s)
	return nil
}

// Teardown clears the stored token and the in-memory session. Idempotent.
func (m *Manager) Teardown() {
	m.mu.Lock()
	wasLoggedIn := m.current != nil
	_ = m.store.Clear()
	m.current = nil
	m.mu.Unlock()

	if wasLoggedIn {
		m.notify(nil)
	}
}

// Current returns a copy of the active session, or nil when logged out.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Token returns the active session token, or "". Satisfies
// api.TokenProvider.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

func (m *Manager) notify(s *Session) {
	m.mu.RLock()
	callbacks := make([]func(*Session), len(m.onChange))
	copy(callbacks, m.onChange)
	m.mu.RUnlock()

	for _, fn := range callbacks {
		fn(s)
	}
}
