package models

import "time"

// PendingCheckoutContext caches a spot snapshot between "start checkout" and
// "return from checkout" so the booking can be created even if the spot
// catalog is unreachable when the payment callback arrives. Lifecycle is
// strictly create -> (read 0 or 1 times) -> delete; never updated in place.
type PendingCheckoutContext struct {
	SpotID        string    `json:"spotId"`
	SessionID     string    `json:"sessionId"`
	SpotName      string    `json:"spotName"`
	SpotAddress   string    `json:"spotAddress,omitempty"`
	SpotLatitude  *float64  `json:"spotLatitude,omitempty"`
	SpotLongitude *float64  `json:"spotLongitude,omitempty"`
	PricingHourly float64   `json:"pricingHourly"`
	Currency      string    `json:"currency,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// VerifiedSession is the provider-reported outcome of a checkout session.
// Amount is converted to major units; nil when the provider reported no
// amount_total.
type VerifiedSession struct {
	SessionID string   `json:"sessionId"`
	Paid      bool     `json:"paid"`
	SpotID    string   `json:"spotId"`
	UserID    string   `json:"userId"`
	Email     string   `json:"email,omitempty"`
	Amount    *float64 `json:"amount"`
	Currency  string   `json:"currency,omitempty"`
}
