// Package session exposes the authenticated-session surface the rest of
// the code depends on. Authentication itself lives in an external
// identity service; this package only tracks "who is signed in now" and
// fans out sign-in/sign-out changes.
package session

import "sync"

// Provider reports the current authenticated user, if any.
type Provider interface {
	CurrentUserID() (string, bool)
}

// Listener receives session changes. signedIn is false on sign-out, in
// which case userID names the user who just left.
type Listener func(userID string, signedIn bool)

// Manager is an in-process session holder with change notification.
type Manager struct {
	mu        sync.RWMutex
	userID    string
	listeners []Listener
}

func NewManager() *Manager { return &Manager{} }

func (m *Manager) CurrentUserID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID, m.userID != ""
}

// Subscribe registers a listener for future sign-in/sign-out events.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// SignIn records the session and notifies listeners. A repeated sign-in
// for the same user is not re-announced.
func (m *Manager) SignIn(userID string) {
	m.mu.Lock()
	if m.userID == userID {
		m.mu.Unlock()
		return
	}
	m.userID = userID
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()
	for _, l := range listeners {
		l(userID, true)
	}
}

func (m *Manager) SignOut() {
	m.mu.Lock()
	userID := m.userID
	if userID == "" {
		m.mu.Unlock()
		return
	}
	m.userID = ""
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()
	for _, l := range listeners {
		l(userID, false)
	}
}
