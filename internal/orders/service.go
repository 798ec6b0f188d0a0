// Package orders implements order placement against a venue, with a
// payment hold at placement and capture or release once the venue
// decides.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/venue-discovery/internal/models"
	"github.com/example/venue-discovery/internal/observability"
	"github.com/example/venue-discovery/internal/payments"
)

var (
	ErrEmptyOrder = errors.New("order has no items")
	ErrNotFound   = errors.New("order not found")
)

// Store defines persistence operations for orders.
type Store interface {
	SaveOrder(ctx context.Context, o *models.Order) error
	UpdateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

type Service struct {
	Store    Store
	Payments payments.Gateway
	Currency string
	Logger   *slog.Logger
}

// Place validates the order, reserves its total on the user's payment
// method and persists it. This is a user-initiated action: failures are
// returned to the caller so they can be surfaced inline.
func (s *Service) Place(ctx context.Context, userID, venueID string, items []models.OrderItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	o := &models.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		VenueID:   venueID,
		Items:     items,
		Currency:  s.Currency,
		Status:    "placed",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if o.TotalCents() <= 0 {
		return nil, ErrEmptyOrder
	}

	paymentID, err := s.Payments.Hold(ctx, o.TotalCents(), o.Currency, userID)
	if err != nil {
		return nil, fmt.Errorf("payment hold: %w", err)
	}
	o.PaymentID = paymentID

	if err := s.Store.SaveOrder(ctx, o); err != nil {
		// Persisting failed; release the hold so funds are not stranded.
		if cerr := s.Payments.Cancel(ctx, paymentID); cerr != nil {
			s.logger().Error("failed to release hold after save error", "order_id", o.ID, "payment_id", paymentID, "error", cerr)
		}
		return nil, fmt.Errorf("save order: %w", err)
	}
	observability.OrdersPlaced.Inc()
	return o, nil
}

// Accept captures the held payment and marks the order accepted.
func (s *Service) Accept(ctx context.Context, orderID string) (*models.Order, error) {
	return s.decide(ctx, orderID, "accepted", s.Payments.Capture)
}

// Reject releases the hold and marks the order rejected.
func (s *Service) Reject(ctx context.Context, orderID string) (*models.Order, error) {
	return s.decide(ctx, orderID, "rejected", s.Payments.Cancel)
}

func (s *Service) decide(ctx context.Context, orderID, status string, settle func(context.Context, string) error) (*models.Order, error) {
	o, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != "placed" {
		return nil, fmt.Errorf("order %s already %s", orderID, o.Status)
	}
	if err := settle(ctx, o.PaymentID); err != nil {
		return nil, fmt.Errorf("settle payment: %w", err)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	if err := s.Store.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
