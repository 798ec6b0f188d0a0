// Package chat relays messages between a diner and a venue over
// WebSocket sessions grouped by conversation. Delivery is live-only;
// durable history belongs to the record store.
package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/venue-discovery/internal/models"
)

var ErrNoParticipants = errors.New("no participants connected")

type participant struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *participant) send(m models.ChatMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(m)
}

// Registry tracks connected participants per conversation.
type Registry struct {
	mu            sync.RWMutex
	conversations map[string]map[*participant]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conversations: make(map[string]map[*participant]struct{})}
}

// Join adds a connection to a conversation and starts relaying its
// inbound messages to the other participants. Blocks until the
// connection closes.
func (r *Registry) Join(conversationID string, conn *websocket.Conn) {
	p := &participant{conn: conn}
	r.mu.Lock()
	if r.conversations[conversationID] == nil {
		r.conversations[conversationID] = make(map[*participant]struct{})
	}
	r.conversations[conversationID][p] = struct{}{}
	r.mu.Unlock()

	defer r.leave(conversationID, p)
	for {
		var m models.ChatMessage
		if err := conn.ReadJSON(&m); err != nil {
			return
		}
		m.ConversationID = conversationID
		if m.SentAt.IsZero() {
			m.SentAt = time.Now()
		}
		_ = r.relay(m, p)
	}
}

func (r *Registry) leave(conversationID string, p *participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations[conversationID], p)
	if len(r.conversations[conversationID]) == 0 {
		delete(r.conversations, conversationID)
	}
}

func (r *Registry) relay(m models.ChatMessage, from *participant) error {
	r.mu.RLock()
	others := make([]*participant, 0, len(r.conversations[m.ConversationID]))
	for p := range r.conversations[m.ConversationID] {
		if p != from {
			others = append(others, p)
		}
	}
	r.mu.RUnlock()
	if len(others) == 0 {
		return ErrNoParticipants
	}
	for _, p := range others {
		_ = p.send(m)
	}
	return nil
}
