package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	bookingRepo "parkly/database/repository/booking"
	paymentRepo "parkly/database/repository/payment"
	spotRepo "parkly/database/repository/spot"
	userRepo "parkly/database/repository/user"
	"parkly/models"
	"parkly/services/notification"
	"parkly/services/spot"
	"parkly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultReconciler turns a paid checkout session into a confirmed
// booking. Verification, user resolution and the booking write are
// hard requirements; payment linkage, snapshot lookup, cleanup and
// notifications are best effort and never fail a paid session.
type DefaultReconciler struct {
	Gateway  PaymentGateway
	Users    userRepo.UserRepository
	Payments paymentRepo.PaymentRepository
	Bookings bookingRepo.BookingRepository
	Spots    spot.SpotService
	Pending  PendingStore
	Notifier notification.NotificationService
	Currency string
}

func NewDefaultReconciler(
	gateway PaymentGateway,
	users userRepo.UserRepository,
	payments paymentRepo.PaymentRepository,
	bookings bookingRepo.BookingRepository,
	spots spot.SpotService,
	pending PendingStore,
	notifier notification.NotificationService,
	currency string,
) *DefaultReconciler {
	return &DefaultReconciler{
		Gateway:  gateway,
		Users:    users,
		Payments: payments,
		Bookings: bookings,
		Spots:    spots,
		Pending:  pending,
		Notifier: notifier,
		Currency: currency,
	}
}

func (r *DefaultReconciler) Reconcile(ctx context.Context, sessionID string) (*models.Booking, error) {
	logger := utils.GetLogger().With(zap.String("sessionID", sessionID))

	verified, err := r.Gateway.VerifySession(ctx, sessionID)
	if err != nil {
		return nil, NewCheckoutError(CodeVerificationFailed, "could not verify the payment session", err)
	}
	if !verified.Paid {
		return nil, NewCheckoutError(CodeNotPaid, "the payment session has not been paid", nil)
	}
	if verified.SpotID == "" {
		return nil, NewCheckoutError(CodeMissingSpot, "the payment session carries no spot id", nil)
	}

	user, err := r.resolveUser(ctx, verified)
	if err != nil {
		return nil, err
	}

	var paymentID string
	if payment, perr := r.Payments.FindBySession(ctx, sessionID, user.ID); perr != nil {
		logger.Warn("Payment record lookup failed", zap.Error(perr))
	} else if payment != nil {
		paymentID = payment.ID
	}

	// A replayed callback must not book the spot twice. The confirmed
	// scan, by session id and by the resolved payment id, catches
	// replays early; the unique session index backstops the race where
	// two replays pass the scan together.
	if existing := r.findConfirmed(ctx, sessionID, paymentID, logger); existing != nil {
		logger.Info("Session already reconciled", zap.String("bookingID", existing.ID))
		r.cleanup(ctx, verified.SpotID, sessionID, logger)
		return existing, nil
	}

	snapshot, serr := r.Pending.GetBySession(ctx, sessionID)
	if serr != nil {
		logger.Warn("Pending checkout lookup failed", zap.Error(serr))
		snapshot = nil
	}

	booking := r.buildBooking(sessionID, paymentID, user.ID, verified, snapshot)

	if err := r.Spots.BookSpot(ctx, verified.SpotID, user.ID, booking); err != nil {
		if errors.Is(err, spotRepo.ErrDuplicateSession) {
			existing, ferr := r.Bookings.GetBySessionID(ctx, sessionID)
			if ferr != nil || existing == nil {
				return nil, NewCheckoutError(CodeBookingFailed,
					"a booking for this session exists but could not be loaded", ferr)
			}
			logger.Info("Session reconciled concurrently", zap.String("bookingID", existing.ID))
			r.cleanup(ctx, verified.SpotID, sessionID, logger)
			return existing, nil
		}
		r.notify(ctx, user.ID, "Booking issue",
			"Your payment succeeded but the booking could not be created. Please check your bookings.",
			map[string]string{"sessionId": sessionID}, logger)
		return nil, NewCheckoutError(CodeBookingFailed,
			"payment succeeded but the booking could not be created", err)
	}

	if paymentID != "" {
		if lerr := r.Payments.AttachBooking(ctx, paymentID, booking.ID); lerr != nil {
			logger.Warn("Failed to link payment to booking",
				zap.String("paymentID", paymentID), zap.Error(lerr))
		}
	}

	r.cleanup(ctx, verified.SpotID, sessionID, logger)
	r.notify(ctx, user.ID, "Booking confirmed",
		"Your parking spot is booked. See you there!",
		map[string]string{"bookingId": booking.ID}, logger)

	logger.Info("Checkout reconciled",
		zap.String("bookingID", booking.ID),
		zap.String("spotID", verified.SpotID))
	return booking, nil
}

func (r *DefaultReconciler) findConfirmed(ctx context.Context, sessionID, paymentID string, logger *zap.Logger) *models.Booking {
	existing, err := r.Bookings.GetBySessionID(ctx, sessionID)
	if err != nil {
		logger.Warn("Duplicate booking scan failed, relying on unique index", zap.Error(err))
	}
	if existing != nil || paymentID == "" {
		return existing
	}
	existing, err = r.Bookings.GetByPaymentID(ctx, paymentID)
	if err != nil {
		logger.Warn("Duplicate booking scan by payment failed", zap.Error(err))
	}
	return existing
}

func (r *DefaultReconciler) resolveUser(ctx context.Context, verified *models.VerifiedSession) (*models.User, error) {
	if verified.UserID == "" {
		return nil, NewCheckoutError(CodeNoUser, "the payment session carries no user id", nil)
	}
	user, err := r.Users.GetByID(ctx, verified.UserID)
	if err != nil {
		return nil, NewCheckoutError(CodeNoUser, "could not resolve the paying user", err)
	}
	return user, nil
}

func (r *DefaultReconciler) buildBooking(sessionID, paymentID, userID string, verified *models.VerifiedSession, snapshot *models.PendingCheckoutContext) *models.Booking {
	booking := &models.Booking{
		ID:            uuid.New().String(),
		UserID:        userID,
		SpotID:        verified.SpotID,
		SessionID:     sessionID,
		PaymentID:     paymentID,
		Status:        models.BookingConfirmed,
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: "card",
		SpotName:      "Parking Spot",
		BookedAt:      time.Now(),
	}

	switch {
	case verified.Amount != nil:
		booking.Amount = *verified.Amount
	case snapshot != nil:
		booking.Amount = snapshot.PricingHourly
	}

	currency := verified.Currency
	if currency == "" && snapshot != nil {
		currency = snapshot.Currency
	}
	if currency == "" {
		currency = r.Currency
	}
	if currency == "" {
		currency = "USD"
	}
	booking.Currency = strings.ToUpper(currency)

	if snapshot != nil {
		if snapshot.SpotName != "" {
			booking.SpotName = snapshot.SpotName
		}
		booking.SpotAddress = snapshot.SpotAddress
		booking.SpotLatitude = snapshot.SpotLatitude
		booking.SpotLongitude = snapshot.SpotLongitude
	}
	return booking
}

func (r *DefaultReconciler) cleanup(ctx context.Context, spotID, sessionID string, logger *zap.Logger) {
	if err := r.Pending.Clear(ctx, spotID, sessionID); err != nil {
		logger.Warn("Failed to clear pending checkout", zap.Error(err))
	}
}

func (r *DefaultReconciler) notify(ctx context.Context, userID, title, body string, data map[string]string, logger *zap.Logger) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.SendPush(ctx, userID, title, body, data); err != nil {
		logger.Warn("Failed to send push notification",
			zap.String("userID", userID), zap.Error(err))
	}
}
