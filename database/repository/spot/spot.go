package spotRepo

import (
	"context"

	"parkly/models"
)

// SpotRepository defines methods for parking spot data access.
type SpotRepository interface {
	// GetByID retrieves a spot by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Spot, error)
	// Search retrieves available spots near the given coordinates, closest first.
	Search(ctx context.Context, lat, lng float64, radiusMeters float64, limit int64) ([]models.Spot, error)
	// ListAvailable retrieves available spots without a geo filter.
	ListAvailable(ctx context.Context, limit int64) ([]models.Spot, error)
	// Create inserts a new spot record.
	Create(ctx context.Context, spot *models.Spot) error
	// Release marks a spot available again and clears the booking stamp.
	Release(ctx context.Context, id string) error
	// UpdateRating replaces the rating aggregate on a spot.
	UpdateRating(ctx context.Context, id string, rating float64, count int) error

	// BookSpotAtomically marks the spot unavailable and inserts the booking
	// within a single transaction. Both writes are applied together or
	// neither is. Returns ErrSpotUnavailable if the spot is missing or
	// already booked, and ErrDuplicateSession if a confirmed booking for the
	// same checkout session already exists.
	BookSpotAtomically(ctx context.Context, spotID, userID string, booking *models.Booking) error
}
