package payments

import (
	"context"
	"os"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// Gateway is the payment surface the order service depends on. Orders
// hold funds at placement and only capture once the venue accepts.
type Gateway interface {
	Hold(ctx context.Context, amount int64, currency, customerID string) (string, error)
	Capture(ctx context.Context, paymentID string) error
	Cancel(ctx context.Context, paymentID string) error
}

// StripeGateway is a thin wrapper around stripe-go for the
// PaymentIntent hold/capture/cancel flow an order goes through.
type StripeGateway struct{}

// NewStripeGateway initializes the stripe client with the
// STRIPE_API_KEY env var.
func NewStripeGateway() *StripeGateway {
	stripe.Key = os.Getenv("STRIPE_API_KEY")
	return &StripeGateway{}
}

// Hold creates a PaymentIntent with capture_method=manual so the order
// total is reserved but not charged. Returns the PaymentIntent ID.
func (s *StripeGateway) Hold(ctx context.Context, amount int64, currency, customerID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}

// Capture finalizes a held PaymentIntent when the venue accepts.
func (s *StripeGateway) Capture(ctx context.Context, paymentID string) error {
	_, err := paymentintent.Capture(paymentID, nil)
	return err
}

// Cancel releases the hold when the venue rejects the order.
func (s *StripeGateway) Cancel(ctx context.Context, paymentID string) error {
	_, err := paymentintent.Cancel(paymentID, nil)
	return err
}
