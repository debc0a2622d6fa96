package booking

import (
	"context"
	"fmt"

	bookingRepo "parkly/database/repository/booking"
	"parkly/models"
	"parkly/services/spot"
	"parkly/utils"

	"go.uber.org/zap"
)

// BookingService exposes the booking lifecycle after checkout: listing,
// cancellation and completion. New bookings are only ever created by the
// checkout reconciler.
type BookingService interface {
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	GetBooking(ctx context.Context, id, userID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, id, userID string) error
	CompleteBooking(ctx context.Context, id, userID string) error
}

type DefaultBookingService struct {
	Bookings bookingRepo.BookingRepository
	Spots    spot.SpotService
}

func NewDefaultBookingService(bookings bookingRepo.BookingRepository, spots spot.SpotService) *DefaultBookingService {
	return &DefaultBookingService{Bookings: bookings, Spots: spots}
}

func (s *DefaultBookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.Bookings.ListByUser(ctx, userID)
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, id, userID string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("booking %s does not belong to user %s", id, userID)
	}
	return booking, nil
}

func (s *DefaultBookingService) CancelBooking(ctx context.Context, id, userID string) error {
	return s.transition(ctx, id, userID, models.BookingCancelled)
}

func (s *DefaultBookingService) CompleteBooking(ctx context.Context, id, userID string) error {
	return s.transition(ctx, id, userID, models.BookingCompleted)
}

func (s *DefaultBookingService) transition(ctx context.Context, id, userID, target string) error {
	booking, err := s.GetBooking(ctx, id, userID)
	if err != nil {
		return err
	}
	if booking.Status != models.BookingActive && booking.Status != models.BookingConfirmed {
		return fmt.Errorf("booking %s is %s and cannot become %s", id, booking.Status, target)
	}

	if err := s.Bookings.UpdateStatus(ctx, id, target); err != nil {
		return err
	}

	// The spot goes back into the pool either way. A release failure is
	// logged, not surfaced: the status transition already happened.
	if err := s.Spots.ReleaseSpot(ctx, booking.SpotID); err != nil {
		utils.GetLogger().Warn("Failed to release spot after booking transition",
			zap.String("bookingID", id),
			zap.String("spotID", booking.SpotID),
			zap.Error(err))
	}
	return nil
}
