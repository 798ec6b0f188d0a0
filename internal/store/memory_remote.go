package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/venue-discovery/internal/models"
)

// MemoryRemote is an in-process RemoteStore for tests and local runs.
type MemoryRemote struct {
	mu   sync.RWMutex
	data map[remoteKey]models.OwnedRecord
}

type remoteKey struct {
	userID    string
	subjectID string
	col       models.Collection
}

func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{data: make(map[remoteKey]models.OwnedRecord)}
}

func (m *MemoryRemote) List(ctx context.Context, userID string, col models.Collection) ([]models.OwnedRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.OwnedRecord
	for k, rec := range m.data {
		if k.userID == userID && k.col == col {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out, nil
}

func (m *MemoryRemote) Upsert(ctx context.Context, userID string, col models.Collection, rec models.OwnedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.UserID = userID
	rec.UpdatedAt = time.Now()
	m.data[remoteKey{userID: userID, subjectID: rec.SubjectID, col: col}] = rec
	return nil
}

func (m *MemoryRemote) Delete(ctx context.Context, userID, subjectID string, col models.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, remoteKey{userID: userID, subjectID: subjectID, col: col})
	return nil
}
