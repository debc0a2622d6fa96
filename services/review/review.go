package review

import (
	"context"
	"fmt"
	"time"

	bookingRepo "parkly/database/repository/booking"
	reviewRepo "parkly/database/repository/review"
	spotRepo "parkly/database/repository/spot"
	"parkly/models"
	"parkly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewService lets users rate spots they have booked.
type ReviewService interface {
	AddReview(ctx context.Context, review *models.Review) (*models.Review, error)
	ListSpotReviews(ctx context.Context, spotID string) ([]models.Review, error)
}

type DefaultReviewService struct {
	Reviews  reviewRepo.ReviewRepository
	Bookings bookingRepo.BookingRepository
	Spots    spotRepo.SpotRepository
}

func NewDefaultReviewService(reviews reviewRepo.ReviewRepository, bookings bookingRepo.BookingRepository, spots spotRepo.SpotRepository) *DefaultReviewService {
	return &DefaultReviewService{Reviews: reviews, Bookings: bookings, Spots: spots}
}

func (s *DefaultReviewService) AddReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}
	if review.SpotID == "" || review.UserID == "" {
		return nil, fmt.Errorf("spot id and user id are required")
	}

	if review.BookingID != "" {
		booking, err := s.Bookings.GetByID(ctx, review.BookingID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify booking: %w", err)
		}
		if booking.UserID != review.UserID || booking.SpotID != review.SpotID {
			return nil, fmt.Errorf("booking %s does not match this review", review.BookingID)
		}
	}

	review.ID = uuid.New().String()
	review.CreatedAt = time.Now()
	if err := s.Reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	// Keep the spot's rating aggregate roughly in sync. Losing one update
	// skews an average slightly; it never loses the review itself.
	if spot, err := s.Spots.GetByID(ctx, review.SpotID); err == nil {
		count := spot.RatingCount + 1
		rating := (spot.Rating*float64(spot.RatingCount) + float64(review.Rating)) / float64(count)
		if err := s.Spots.UpdateRating(ctx, review.SpotID, rating, count); err != nil {
			utils.GetLogger().Warn("Failed to update spot rating aggregate",
				zap.String("spotID", review.SpotID), zap.Error(err))
		}
	}
	return review, nil
}

func (s *DefaultReviewService) ListSpotReviews(ctx context.Context, spotID string) ([]models.Review, error) {
	return s.Reviews.ListBySpot(ctx, spotID)
}
