package paymentRepo

import (
	"context"

	"parkly/models"
)

// PaymentRepository defines methods for payment record access.
type PaymentRepository interface {
	// FindBySession retrieves the payment for a checkout session owned by a
	// user. Returns (nil, nil) when no such payment exists.
	FindBySession(ctx context.Context, sessionID, userID string) (*models.Payment, error)
	// Create inserts a new payment record.
	Create(ctx context.Context, payment *models.Payment) error
	// AttachBooking records the booking back-reference and marks the payment
	// succeeded. Callers on the reconciliation path treat a failure here as
	// best-effort.
	AttachBooking(ctx context.Context, paymentID, bookingID string) error
}
