// Package reconcile moves user-owned collections between device-local
// storage (before sign-in) and the remote record store (after), with a
// one-time migration of pending local records per session.
package reconcile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/example/venue-discovery/internal/models"
	"github.com/example/venue-discovery/internal/observability"
	"github.com/example/venue-discovery/internal/store"
)

// State of one collection's data source.
type State int

const (
	// AnonymousLocal: no session; reads and writes hit local storage.
	AnonymousLocal State = iota
	// Migrating: local records are being drained into the remote store.
	Migrating
	// RemoteAuthoritative: remote storage is the single source of truth.
	RemoteAuthoritative
)

// Layer manages one user-owned collection. All remote writes go through
// an upsert keyed (userID, subjectID), so migrations and retries are
// idempotent.
type Layer struct {
	col    models.Collection
	local  store.LocalStore
	remote store.RemoteStore
	logger *slog.Logger

	mu          sync.Mutex
	state       State
	userID      string
	migratedFor string // guards the once-per-session migration
}

func NewLayer(col models.Collection, local store.LocalStore, remote store.RemoteStore, logger *slog.Logger) *Layer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Layer{col: col, local: local, remote: remote, logger: logger}
}

// LocalKey is the fixed device-storage key for a collection.
func LocalKey(col models.Collection) string { return "local." + string(col) }

// SessionChanged is the session listener: it arms migration on sign-in
// and reverts the layer to local-only operation on sign-out. Remote
// records stay server-side, out of reach until the user returns.
func (l *Layer) SessionChanged(userID string, signedIn bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if signedIn {
		l.userID = userID
		l.state = RemoteAuthoritative
		return
	}
	l.userID = ""
	l.migratedFor = ""
	l.state = AnonymousLocal
}

// State reports the current data-source state.
func (l *Layer) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// List returns the collection from whichever store is authoritative.
// Remote failures degrade to an empty list; they are logged, never
// returned, so the caller renders "no items" instead of crashing.
func (l *Layer) List(ctx context.Context) []models.OwnedRecord {
	l.mu.Lock()
	userID := l.userID
	l.mu.Unlock()

	if userID == "" {
		return l.readLocal()
	}
	if ok := l.migrate(ctx, userID); !ok {
		// Migration abandoned; local is still the safest view.
		return l.readLocal()
	}
	recs, err := l.remote.List(ctx, userID, l.col)
	if err != nil {
		l.logger.Error("remote list failed", "collection", l.col, "user_id", userID, "error", err)
		return nil
	}
	return recs
}

// Put stores one record in the authoritative store. The returned flag
// tells the caller whether the write landed; messaging is theirs.
func (l *Layer) Put(ctx context.Context, rec models.OwnedRecord) bool {
	l.mu.Lock()
	userID := l.userID
	l.mu.Unlock()

	if userID == "" {
		return l.writeLocal(rec)
	}
	l.migrate(ctx, userID)
	if err := l.remote.Upsert(ctx, userID, l.col, rec); err != nil {
		l.logger.Error("remote upsert failed", "collection", l.col, "user_id", userID, "subject_id", rec.SubjectID, "error", err)
		return false
	}
	return true
}

// Remove deletes one record from the authoritative store.
func (l *Layer) Remove(ctx context.Context, subjectID string) bool {
	l.mu.Lock()
	userID := l.userID
	l.mu.Unlock()

	if userID == "" {
		return l.removeLocal(subjectID)
	}
	l.migrate(ctx, userID)
	if err := l.remote.Delete(ctx, userID, subjectID, l.col); err != nil {
		l.logger.Error("remote delete failed", "collection", l.col, "user_id", userID, "subject_id", subjectID, "error", err)
		return false
	}
	return true
}

// migrate drains pending local records into the remote store, at most
// once per session. All-or-keep: the local key is cleared only after
// every upsert succeeds, so a partial failure retries in full on the
// next call. Best-effort background housekeeping; failures are logged,
// never surfaced.
func (l *Layer) migrate(ctx context.Context, userID string) bool {
	l.mu.Lock()
	if l.migratedFor == userID {
		l.mu.Unlock()
		return true
	}
	l.state = Migrating
	l.mu.Unlock()

	finish := func(ok bool) bool {
		l.mu.Lock()
		if ok {
			l.migratedFor = userID
			l.state = RemoteAuthoritative
		} else {
			l.state = AnonymousLocal
		}
		l.mu.Unlock()
		return ok
	}

	serialized, present := l.local.Get(LocalKey(l.col))
	if !present || serialized == "" {
		return finish(true)
	}
	recs, err := decodeLocal(serialized)
	if err != nil {
		l.logger.Warn("local records unreadable, leaving key intact", "collection", l.col, "error", err)
		observability.MigrationFailures.Inc()
		return finish(false)
	}
	for _, rec := range recs {
		if err := l.remote.Upsert(ctx, userID, l.col, rec); err != nil {
			l.logger.Warn("migration upsert failed, keeping local copy for retry",
				"collection", l.col, "user_id", userID, "subject_id", rec.SubjectID, "error", err)
			observability.MigrationFailures.Inc()
			return finish(false)
		}
	}
	l.local.Remove(LocalKey(l.col))
	observability.MigrationsTotal.Inc()
	l.logger.Info("migrated local records", "collection", l.col, "user_id", userID, "count", len(recs))
	return finish(true)
}

func (l *Layer) readLocal() []models.OwnedRecord {
	serialized, ok := l.local.Get(LocalKey(l.col))
	if !ok || serialized == "" {
		return nil
	}
	recs, err := decodeLocal(serialized)
	if err != nil {
		l.logger.Warn("local records unreadable", "collection", l.col, "error", err)
		return nil
	}
	return recs
}

func (l *Layer) writeLocal(rec models.OwnedRecord) bool {
	recs := l.readLocal()
	replaced := false
	for i := range recs {
		if recs[i].SubjectID == rec.SubjectID {
			recs[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		recs = append(recs, rec)
	}
	serialized, err := encodeLocal(recs)
	if err != nil {
		l.logger.Error("local encode failed", "collection", l.col, "error", err)
		return false
	}
	l.local.Set(LocalKey(l.col), serialized)
	return true
}

func (l *Layer) removeLocal(subjectID string) bool {
	recs := l.readLocal()
	kept := recs[:0]
	for _, rec := range recs {
		if rec.SubjectID != subjectID {
			kept = append(kept, rec)
		}
	}
	if len(kept) == 0 {
		l.local.Remove(LocalKey(l.col))
		return true
	}
	serialized, err := encodeLocal(kept)
	if err != nil {
		l.logger.Error("local encode failed", "collection", l.col, "error", err)
		return false
	}
	l.local.Set(LocalKey(l.col), serialized)
	return true
}
