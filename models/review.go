package models

import "time"

// Review is a user's rating of a spot after a completed booking.
type Review struct {
	ID        string    `bson:"id" json:"id"`
	SpotID    string    `bson:"spot_id" json:"spot_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	BookingID string    `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	Rating    int       `bson:"rating" json:"rating"` // 1..5
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
