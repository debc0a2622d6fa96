package models

import "time"

// Booking status values. A booking is never deleted, only status-transitioned.
const (
	BookingActive    = "active"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Booking payment status values.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Booking represents a confirmed booking record. At most one booking with
// status "confirmed" may exist per checkout session id; the bookings
// collection carries a unique partial index enforcing this.
type Booking struct {
	ID            string     `bson:"id" json:"id"`
	UserID        string     `bson:"user_id" json:"user_id"`
	SpotID        string     `bson:"spot_id" json:"spot_id"`
	SessionID     string     `bson:"session_id,omitempty" json:"session_id,omitempty"`
	PaymentID     string     `bson:"payment_id,omitempty" json:"payment_id,omitempty"`
	Status        string     `bson:"status" json:"status"`
	PaymentStatus string     `bson:"payment_status" json:"payment_status"`
	PaymentMethod string     `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	Amount        float64    `bson:"amount" json:"amount"`
	Currency      string     `bson:"currency" json:"currency"`
	SpotName      string     `bson:"spot_name" json:"spot_name"`
	SpotAddress   string     `bson:"spot_address,omitempty" json:"spot_address,omitempty"`
	SpotLatitude  *float64   `bson:"spot_latitude,omitempty" json:"spot_latitude,omitempty"`
	SpotLongitude *float64   `bson:"spot_longitude,omitempty" json:"spot_longitude,omitempty"`
	BookedAt      time.Time  `bson:"booked_at" json:"booked_at"`
	BookingStart  *time.Time `bson:"booking_start,omitempty" json:"booking_start,omitempty"`
	BookingEnd    *time.Time `bson:"booking_end,omitempty" json:"booking_end,omitempty"`
}
