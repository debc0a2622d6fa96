package models

import "time"

// GeoPoint is a GeoJSON point, longitude first, as mongo expects for 2dsphere queries.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [lng, lat]
}

func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Spot represents a bookable parking spot.
type Spot struct {
	ID            string     `bson:"id" json:"id"`
	OwnerID       string     `bson:"owner_id" json:"owner_id"`
	Name          string     `bson:"name" json:"name"`
	Address       string     `bson:"address" json:"address"`
	Location      GeoPoint   `bson:"location" json:"location"`
	PricingHourly float64    `bson:"pricing_hourly" json:"pricing_hourly"`
	Currency      string     `bson:"currency" json:"currency"`
	Available     bool       `bson:"available" json:"available"`
	BookedBy      string     `bson:"booked_by,omitempty" json:"booked_by,omitempty"`
	BookedAt      *time.Time `bson:"booked_at,omitempty" json:"booked_at,omitempty"`
	PhotoURL      string     `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Rating        float64    `bson:"rating" json:"rating"`
	RatingCount   int        `bson:"rating_count" json:"rating_count"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
}

// Latitude returns the spot latitude, or 0 if the location is unset.
func (s *Spot) Latitude() float64 {
	if len(s.Location.Coordinates) != 2 {
		return 0
	}
	return s.Location.Coordinates[1]
}

// Longitude returns the spot longitude, or 0 if the location is unset.
func (s *Spot) Longitude() float64 {
	if len(s.Location.Coordinates) != 2 {
		return 0
	}
	return s.Location.Coordinates[0]
}
