// Package store holds the two persistence surfaces the reconciliation
// layer moves between: synchronous device-local key/value storage and
// a user-scoped remote record store.
package store

import (
	"context"
	"sync"

	"github.com/example/venue-discovery/internal/models"
)

// LocalStore is the device storage surface: synchronous, string-valued,
// shared within one profile. Serialized record lists live under a fixed
// per-collection key while no user is signed in.
type LocalStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// RemoteStore is the durable, user-scoped record store. Upsert is keyed
// on (userID, subjectID, collection) so re-running a write never
// creates duplicates.
type RemoteStore interface {
	List(ctx context.Context, userID string, col models.Collection) ([]models.OwnedRecord, error)
	Upsert(ctx context.Context, userID string, col models.Collection, rec models.OwnedRecord) error
	Delete(ctx context.Context, userID, subjectID string, col models.Collection) error
}

// MemoryLocal is an in-process LocalStore.
type MemoryLocal struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryLocal() *MemoryLocal {
	return &MemoryLocal{data: make(map[string]string)}
}

func (m *MemoryLocal) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryLocal) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *MemoryLocal) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}
