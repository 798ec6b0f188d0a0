// Package reservations books tables as user-owned records behind the
// reconciliation layer, so bookings made before sign-in are claimed on
// the first authenticated load like any other collection.
package reservations

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/example/venue-discovery/internal/models"
	"github.com/example/venue-discovery/internal/reconcile"
)

var ErrWriteFailed = errors.New("reservation could not be saved")

type Service struct {
	Records *reconcile.Layer
}

// Book stores a reservation request. Unlike migrations, booking is a
// user-initiated action, so a failed write comes back as an error for
// inline messaging.
func (s *Service) Book(ctx context.Context, venueID string, party int, at time.Time) (*models.Reservation, error) {
	if party <= 0 {
		return nil, errors.New("party size must be positive")
	}
	if at.Before(time.Now()) {
		return nil, errors.New("reservation time is in the past")
	}
	r := &models.Reservation{
		ID:      uuid.NewString(),
		VenueID: venueID,
		Party:   party,
		At:      at,
		Status:  "requested",
	}
	rec := models.OwnedRecord{
		SubjectID: venueID,
		Fields: map[string]string{
			"reservation_id": r.ID,
			"party":          strconv.Itoa(party),
			"at":             at.UTC().Format(time.RFC3339),
			"status":         r.Status,
		},
	}
	if !s.Records.Put(ctx, rec) {
		return nil, ErrWriteFailed
	}
	return r, nil
}

// Cancel removes the reservation held against a venue.
func (s *Service) Cancel(ctx context.Context, venueID string) error {
	if !s.Records.Remove(ctx, venueID) {
		return ErrWriteFailed
	}
	return nil
}

// List returns the caller's reservations from the authoritative store.
func (s *Service) List(ctx context.Context) []models.Reservation {
	recs := s.Records.List(ctx)
	out := make([]models.Reservation, 0, len(recs))
	for _, rec := range recs {
		r := models.Reservation{
			ID:      rec.Fields["reservation_id"],
			UserID:  rec.UserID,
			VenueID: rec.SubjectID,
			Status:  rec.Fields["status"],
		}
		if p, err := strconv.Atoi(rec.Fields["party"]); err == nil {
			r.Party = p
		}
		if at, err := time.Parse(time.RFC3339, rec.Fields["at"]); err == nil {
			r.At = at
		}
		out = append(out, r)
	}
	return out
}
