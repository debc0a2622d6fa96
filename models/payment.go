package models

import "time"

// Payment record status values.
const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// Payment is the persistent record of a checkout payment, keyed by the
// provider session id. BookingID is a back-reference attached once the
// booking exists; attaching it is best-effort and never rolls back a booking.
type Payment struct {
	ID        string     `bson:"id" json:"id"`
	SessionID string     `bson:"session_id" json:"session_id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Amount    float64    `bson:"amount" json:"amount"`
	Currency  string     `bson:"currency" json:"currency"`
	Status    string     `bson:"status" json:"status"`
	BookingID string     `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	PaidAt    *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}
