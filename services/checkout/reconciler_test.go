package checkout

import (
	"context"
	"errors"
	"testing"

	spotRepo "parkly/database/repository/spot"
	"parkly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func floatPtr(v float64) *float64 { return &v }

type reconcilerFixture struct {
	gateway  *mockGateway
	users    *mockUserRepo
	payments *mockPaymentRepo
	bookings *mockBookingRepo
	spots    *mockSpotService
	pending  *mockPendingStore
	notifier *mockNotifier
	sut      *DefaultReconciler
}

func newReconcilerFixture() *reconcilerFixture {
	f := &reconcilerFixture{
		gateway:  new(mockGateway),
		users:    new(mockUserRepo),
		payments: new(mockPaymentRepo),
		bookings: new(mockBookingRepo),
		spots:    new(mockSpotService),
		pending:  new(mockPendingStore),
		notifier: new(mockNotifier),
	}
	f.sut = NewDefaultReconciler(
		f.gateway, f.users, f.payments, f.bookings, f.spots, f.pending, f.notifier, "USD",
	)
	return f
}

func paidSession(sessionID string) *models.VerifiedSession {
	return &models.VerifiedSession{
		SessionID: sessionID,
		Paid:      true,
		SpotID:    "spot-1",
		UserID:    "user-1",
		Amount:    floatPtr(12.5),
		Currency:  "usd",
	}
}

func TestReconcileCreatesConfirmedBooking(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	f.gateway.On("VerifySession", ctx, "sess-1").Return(paidSession("sess-1"), nil)
	f.users.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1"}, nil)
	f.bookings.On("GetBySessionID", ctx, "sess-1").Return(nil, nil)
	f.bookings.On("GetByPaymentID", ctx, "pay-1").Return(nil, nil)
	f.payments.On("FindBySession", ctx, "sess-1", "user-1").
		Return(&models.Payment{ID: "pay-1"}, nil)
	f.pending.On("GetBySession", ctx, "sess-1").Return(&models.PendingCheckoutContext{
		SpotID:        "spot-1",
		SessionID:     "sess-1",
		SpotName:      "Elm Street Garage",
		SpotAddress:   "12 Elm St",
		SpotLatitude:  floatPtr(40.7),
		SpotLongitude: floatPtr(-74.0),
		PricingHourly: 8,
	}, nil)
	f.spots.On("BookSpot", ctx, "spot-1", "user-1", mock.AnythingOfType("*models.Booking")).Return(nil)
	f.payments.On("AttachBooking", ctx, "pay-1", mock.AnythingOfType("string")).Return(nil)
	f.pending.On("Clear", ctx, "spot-1", "sess-1").Return(nil)
	f.notifier.On("SendPush", ctx, "user-1", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.NoError(t, err)
	assert.NotNil(t, booking)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
	assert.Equal(t, models.PaymentStatusPaid, booking.PaymentStatus)
	assert.Equal(t, "user-1", booking.UserID)
	assert.Equal(t, "spot-1", booking.SpotID)
	assert.Equal(t, "sess-1", booking.SessionID)
	assert.Equal(t, "pay-1", booking.PaymentID)
	assert.Equal(t, 12.5, booking.Amount)
	assert.Equal(t, "USD", booking.Currency)
	assert.Equal(t, "Elm Street Garage", booking.SpotName)
	f.spots.AssertExpectations(t)
	f.payments.AssertExpectations(t)
}

func TestReconcileVerificationFailureIsFatal(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	f.gateway.On("VerifySession", ctx, "sess-1").Return(nil, errors.New("provider down"))

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.Nil(t, booking)
	assert.Equal(t, CodeVerificationFailed, ErrorCode(err))
	f.spots.AssertNotCalled(t, "BookSpot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileUnpaidSessionIsFatal(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	session := paidSession("sess-1")
	session.Paid = false
	f.gateway.On("VerifySession", ctx, "sess-1").Return(session, nil)

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.Nil(t, booking)
	assert.Equal(t, CodeNotPaid, ErrorCode(err))
}

func TestReconcileMissingSpotIDIsFatal(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	session := paidSession("sess-1")
	session.SpotID = ""
	f.gateway.On("VerifySession", ctx, "sess-1").Return(session, nil)

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.Nil(t, booking)
	assert.Equal(t, CodeMissingSpot, ErrorCode(err))
}

func TestReconcileUnknownUserIsFatal(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	f.gateway.On("VerifySession", ctx, "sess-1").Return(paidSession("sess-1"), nil)
	f.users.On("GetByID", ctx, "user-1").Return(nil, errors.New("not found"))

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.Nil(t, booking)
	assert.Equal(t, CodeNoUser, ErrorCode(err))
	f.spots.AssertNotCalled(t, "BookSpot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileReplayedSessionReturnsExistingBooking(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	existing := &models.Booking{ID: "bk-1", SessionID: "sess-1", Status: models.BookingConfirmed}
	f.gateway.On("VerifySession", ctx, "sess-1").Return(paidSession("sess-1"), nil)
	f.users.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1"}, nil)
	f.payments.On("FindBySession", ctx, "sess-1", "user-1").Return(nil, nil)
	f.bookings.On("GetBySessionID", ctx, "sess-1").Return(existing, nil)
	f.pending.On("Clear", ctx, "spot-1", "sess-1").Return(nil)

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.NoError(t, err)
	assert.Equal(t, existing, booking)
	f.spots.AssertNotCalled(t, "BookSpot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileDuplicateFoundByPaymentIDReturnsExistingBooking(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	// A prior reconciliation confirmed this payment under a different
	// session id, so the session scan misses but the payment scan hits.
	existing := &models.Booking{ID: "bk-1", PaymentID: "pay-1", Status: models.BookingConfirmed}
	f.gateway.On("VerifySession", ctx, "sess-1").Return(paidSession("sess-1"), nil)
	f.users.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1"}, nil)
	f.payments.On("FindBySession", ctx, "sess-1", "user-1").
		Return(&models.Payment{ID: "pay-1"}, nil)
	f.bookings.On("GetBySessionID", ctx, "sess-1").Return(nil, nil)
	f.bookings.On("GetByPaymentID", ctx, "pay-1").Return(existing, nil)
	f.pending.On("Clear", ctx, "spot-1", "sess-1").Return(nil)

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.NoError(t, err)
	assert.Equal(t, existing, booking)
	f.spots.AssertNotCalled(t, "BookSpot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileDuplicateInsertRaceReturnsExistingBooking(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	existing := &models.Booking{ID: "bk-1", SessionID: "sess-1", Status: models.BookingConfirmed}
	f.gateway.On("VerifySession", ctx, "sess-1").Return(paidSession("sess-1"), nil)
	f.users.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1"}, nil)
	// Scan misses, the unique index trips, then the second lookup finds it.
	f.bookings.On("GetBySessionID", ctx, "sess-1").Return(nil, nil).Once()
	f.payments.On("FindBySession", ctx, "sess-1", "user-1").Return(nil, nil)
	f.pending.On("GetBySession", ctx, "sess-1").Return(nil, nil)
	f.spots.On("BookSpot", ctx, "spot-1", "user-1", mock.Anything).
		Return(spotRepo.ErrDuplicateSession)
	f.bookings.On("GetBySessionID", ctx, "sess-1").Return(existing, nil).Once()
	f.pending.On("Clear", ctx, "spot-1", "sess-1").Return(nil)

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.NoError(t, err)
	assert.Equal(t, existing, booking)
}

func TestReconcileBookingFailureAfterPaymentIsSurfaced(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	f.gateway.On("VerifySession", ctx, "sess-1").Return(paidSession("sess-1"), nil)
	f.users.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1"}, nil)
	f.bookings.On("GetBySessionID", ctx, "sess-1").Return(nil, nil)
	f.payments.On("FindBySession", ctx, "sess-1", "user-1").Return(nil, nil)
	f.pending.On("GetBySession", ctx, "sess-1").Return(nil, nil)
	f.spots.On("BookSpot", ctx, "spot-1", "user-1", mock.Anything).
		Return(spotRepo.ErrSpotUnavailable)
	f.notifier.On("SendPush", ctx, "user-1", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.Nil(t, booking)
	assert.Equal(t, CodeBookingFailed, ErrorCode(err))
	f.notifier.AssertExpectations(t)
}

func TestReconcileAmountFallsBackToSnapshotPrice(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	session := paidSession("sess-1")
	session.Amount = nil
	session.Currency = ""
	f.gateway.On("VerifySession", ctx, "sess-1").Return(session, nil)
	f.users.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1"}, nil)
	f.bookings.On("GetBySessionID", ctx, "sess-1").Return(nil, nil)
	f.payments.On("FindBySession", ctx, "sess-1", "user-1").Return(nil, nil)
	f.pending.On("GetBySession", ctx, "sess-1").Return(&models.PendingCheckoutContext{
		SpotID:        "spot-1",
		SessionID:     "sess-1",
		PricingHourly: 1.5,
		Currency:      "eur",
	}, nil)
	f.spots.On("BookSpot", ctx, "spot-1", "user-1", mock.Anything).Return(nil)
	f.pending.On("Clear", ctx, "spot-1", "sess-1").Return(nil)
	f.notifier.On("SendPush", ctx, "user-1", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.NoError(t, err)
	assert.Equal(t, 1.5, booking.Amount)
	assert.Equal(t, "EUR", booking.Currency)
}

func TestReconcileMissingSnapshotUsesDefaults(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	session := paidSession("sess-1")
	session.Amount = nil
	session.Currency = ""
	f.gateway.On("VerifySession", ctx, "sess-1").Return(session, nil)
	f.users.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1"}, nil)
	f.bookings.On("GetBySessionID", ctx, "sess-1").Return(nil, nil)
	f.payments.On("FindBySession", ctx, "sess-1", "user-1").Return(nil, nil)
	f.pending.On("GetBySession", ctx, "sess-1").Return(nil, errors.New("redis down"))
	f.spots.On("BookSpot", ctx, "spot-1", "user-1", mock.Anything).Return(nil)
	f.pending.On("Clear", ctx, "spot-1", "sess-1").Return(nil)
	f.notifier.On("SendPush", ctx, "user-1", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.NoError(t, err)
	assert.Equal(t, float64(0), booking.Amount)
	assert.Equal(t, "USD", booking.Currency)
	assert.Equal(t, "Parking Spot", booking.SpotName)
}

func TestReconcilePaymentLinkFailureDoesNotFailBooking(t *testing.T) {
	f := newReconcilerFixture()
	ctx := context.Background()

	f.gateway.On("VerifySession", ctx, "sess-1").Return(paidSession("sess-1"), nil)
	f.users.On("GetByID", ctx, "user-1").Return(&models.User{ID: "user-1"}, nil)
	f.bookings.On("GetBySessionID", ctx, "sess-1").Return(nil, nil)
	f.bookings.On("GetByPaymentID", ctx, "pay-1").Return(nil, nil)
	f.payments.On("FindBySession", ctx, "sess-1", "user-1").
		Return(&models.Payment{ID: "pay-1"}, nil)
	f.pending.On("GetBySession", ctx, "sess-1").Return(nil, nil)
	f.spots.On("BookSpot", ctx, "spot-1", "user-1", mock.Anything).Return(nil)
	f.payments.On("AttachBooking", ctx, "pay-1", mock.Anything).Return(errors.New("write failed"))
	f.pending.On("Clear", ctx, "spot-1", "sess-1").Return(errors.New("redis down"))
	f.notifier.On("SendPush", ctx, "user-1", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("no token"))

	booking, err := f.sut.Reconcile(ctx, "sess-1")

	assert.NoError(t, err)
	assert.NotNil(t, booking)
}
