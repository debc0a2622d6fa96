package checkout

import (
	"context"
	"time"

	"parkly/models"

	"github.com/stretchr/testify/mock"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutRedirect, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutRedirect), args.Error(1)
}

func (m *mockGateway) VerifySession(ctx context.Context, sessionID string) (*models.VerifiedSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerifiedSession), args.Error(1)
}

type mockPendingStore struct {
	mock.Mock
}

func (m *mockPendingStore) Save(ctx context.Context, pending *models.PendingCheckoutContext) error {
	return m.Called(ctx, pending).Error(0)
}

func (m *mockPendingStore) GetBySpot(ctx context.Context, spotID string) (*models.PendingCheckoutContext, error) {
	args := m.Called(ctx, spotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingCheckoutContext), args.Error(1)
}

func (m *mockPendingStore) GetBySession(ctx context.Context, sessionID string) (*models.PendingCheckoutContext, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingCheckoutContext), args.Error(1)
}

func (m *mockPendingStore) Clear(ctx context.Context, spotID, sessionID string) error {
	return m.Called(ctx, spotID, sessionID).Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) UpdateFCMToken(ctx context.Context, id, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) FindBySession(ctx context.Context, sessionID, userID string) (*models.Payment, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockPaymentRepo) AttachBooking(ctx context.Context, paymentID, bookingID string) error {
	return m.Called(ctx, paymentID, bookingID).Error(0)
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Booking, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetByPaymentID(ctx context.Context, paymentID string) (*models.Booking, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockBookingRepo) AttachPayment(ctx context.Context, id, paymentID string) error {
	return m.Called(ctx, id, paymentID).Error(0)
}

func (m *mockBookingRepo) ListExpired(ctx context.Context, now time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

type mockSpotService struct {
	mock.Mock
}

func (m *mockSpotService) GetSpot(ctx context.Context, id string) (*models.Spot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Spot), args.Error(1)
}

func (m *mockSpotService) SearchNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int64) ([]models.Spot, error) {
	args := m.Called(ctx, lat, lng, radiusMeters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Spot), args.Error(1)
}

func (m *mockSpotService) ListAvailable(ctx context.Context, limit int64) ([]models.Spot, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Spot), args.Error(1)
}

func (m *mockSpotService) CreateSpot(ctx context.Context, spot *models.Spot) error {
	return m.Called(ctx, spot).Error(0)
}

func (m *mockSpotService) BookSpot(ctx context.Context, spotID, userID string, booking *models.Booking) error {
	return m.Called(ctx, spotID, userID, booking).Error(0)
}

func (m *mockSpotService) ReleaseSpot(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendPush(ctx context.Context, userID, title, body string, data map[string]string) error {
	return m.Called(ctx, userID, title, body, data).Error(0)
}

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Reconcile(ctx context.Context, sessionID string) (*models.Booking, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
