// Package presence implements the "HERE" feature: opt-in check-in
// broadcasts fanned out to everyone watching the same venue.
package presence

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/venue-discovery/internal/models"
)

// Session is one connected watcher of a venue.
type Session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *Session) Send(c models.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(c)
}

// Registry holds watcher sessions grouped by venue.
type Registry struct {
	mu       sync.RWMutex
	watchers map[string]map[*Session]struct{}
}

func NewRegistry() *Registry {
	return &Registry{watchers: make(map[string]map[*Session]struct{})}
}

// Watch registers a connection as a watcher of venueID and returns the
// session handle for later removal.
func (r *Registry) Watch(venueID string, conn *websocket.Conn) *Session {
	s := &Session{conn: conn}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watchers[venueID] == nil {
		r.watchers[venueID] = make(map[*Session]struct{})
	}
	r.watchers[venueID][s] = struct{}{}
	return s
}

func (r *Registry) Unwatch(venueID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.watchers[venueID], s)
	if len(r.watchers[venueID]) == 0 {
		delete(r.watchers, venueID)
	}
}

// Broadcast delivers a check-in to every watcher of its venue. Failed
// sends are logged and dropped; presence is eventually consistent and a
// watcher that missed one event catches the next.
func (r *Registry) Broadcast(c models.CheckIn) {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.watchers[c.VenueID]))
	for s := range r.watchers[c.VenueID] {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()
	for _, s := range sessions {
		if err := s.Send(c); err != nil {
			slog.Default().Warn("presence send failed", "venue_id", c.VenueID, "error", err)
		}
	}
}
