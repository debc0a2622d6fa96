package reviewRepo

import (
	"context"

	"parkly/models"
)

// ReviewRepository defines methods for review data access.
type ReviewRepository interface {
	// Create inserts a new review record.
	Create(ctx context.Context, review *models.Review) error
	// ListBySpot retrieves all reviews for a spot, newest first.
	ListBySpot(ctx context.Context, spotID string) ([]models.Review, error)
}
