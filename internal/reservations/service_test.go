package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/venue-discovery/internal/models"
	"github.com/example/venue-discovery/internal/reconcile"
	"github.com/example/venue-discovery/internal/store"
)

func newService() (*Service, *store.MemoryLocal) {
	local := store.NewMemoryLocal()
	layer := reconcile.NewLayer(models.Reservations, local, store.NewMemoryRemote(), nil)
	return &Service{Records: layer}, local
}

func TestBookAndListRoundTrip(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	at := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	r, err := svc.Book(ctx, "v1", 4, at)
	require.NoError(t, err)
	assert.Equal(t, "requested", r.Status)

	got := svc.List(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].VenueID)
	assert.Equal(t, 4, got[0].Party)
	assert.True(t, got[0].At.Equal(at))
}

func TestBookValidatesInput(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Book(ctx, "v1", 0, time.Now().Add(time.Hour))
	assert.Error(t, err)

	_, err = svc.Book(ctx, "v1", 2, time.Now().Add(-time.Hour))
	assert.Error(t, err)
}

func TestCancelRemovesReservation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Book(ctx, "v1", 2, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, "v1"))
	assert.Empty(t, svc.List(ctx))
}

func TestAnonymousBookingClaimedOnSignIn(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	at := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	_, err := svc.Book(ctx, "v7", 2, at)
	require.NoError(t, err)

	svc.Records.SessionChanged("u1", true)
	got := svc.List(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, "v7", got[0].VenueID)
	assert.Equal(t, 2, got[0].Party)
}
