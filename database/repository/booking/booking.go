package bookingRepo

import (
	"context"
	"time"

	"parkly/models"
)

// BookingRepository defines methods for booking data access. Bookings are
// inserted by the spot repository's booking transaction; this repository
// reads and status-transitions them.
type BookingRepository interface {
	// GetByID retrieves a booking by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// GetBySessionID retrieves the confirmed booking for a checkout session.
	// Returns (nil, nil) when no confirmed booking exists for the session.
	GetBySessionID(ctx context.Context, sessionID string) (*models.Booking, error)
	// GetByPaymentID retrieves the confirmed booking referencing a payment.
	// Returns (nil, nil) when none exists.
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error)
	// ListByUser retrieves all bookings owned by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	// UpdateStatus transitions a booking's status.
	UpdateStatus(ctx context.Context, id, status string) error
	// AttachPayment records the payment back-reference on a booking.
	AttachPayment(ctx context.Context, id, paymentID string) error
	// ListExpired retrieves confirmed/active bookings whose booking_end has passed.
	ListExpired(ctx context.Context, now time.Time) ([]models.Booking, error)
}
