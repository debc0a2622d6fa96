package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"parkly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		wantOutcome Outcome
		wantSession string
	}{
		{
			name:        "success with session id",
			url:         "parkly://checkout/success?session_id=cs_test_123",
			wantOutcome: OutcomeSuccess,
			wantSession: "cs_test_123",
		},
		{
			name:        "success over https",
			url:         "https://api.example.com/checkout/callback/success?session_id=cs_test_456",
			wantOutcome: OutcomeSuccess,
			wantSession: "cs_test_456",
		},
		{
			name:        "url encoded session id is decoded",
			url:         "parkly://checkout/success?session_id=cs%5Ftest%5F789",
			wantOutcome: OutcomeSuccess,
			wantSession: "cs_test_789",
		},
		{
			name:        "success without session id",
			url:         "parkly://checkout/success",
			wantOutcome: OutcomeSuccess,
			wantSession: "",
		},
		{
			name:        "cancel",
			url:         "parkly://checkout/cancel",
			wantOutcome: OutcomeCancel,
			wantSession: "",
		},
		{
			name:        "unrelated link",
			url:         "parkly://spots/spot-1",
			wantOutcome: OutcomeOther,
			wantSession: "",
		},
		{
			name:        "unparseable",
			url:         "://not-a-url",
			wantOutcome: OutcomeOther,
			wantSession: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, sessionID := ParseCallback(tt.url)
			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Equal(t, tt.wantSession, sessionID)
		})
	}
}

func TestIngressIgnoresUnrelatedLinks(t *testing.T) {
	rec := new(mockReconciler)
	pending := new(mockPendingStore)
	ingress := NewIngress(rec, pending)

	booking, err := ingress.HandleCallback(context.Background(), LinkEvent{URL: "parkly://spots/spot-1"})

	assert.NoError(t, err)
	assert.Nil(t, booking)
	rec.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}

func TestIngressSuccessWithoutSessionIDFails(t *testing.T) {
	rec := new(mockReconciler)
	pending := new(mockPendingStore)
	ingress := NewIngress(rec, pending)

	booking, err := ingress.HandleCallback(context.Background(), LinkEvent{URL: "parkly://checkout/success"})

	assert.Nil(t, booking)
	assert.Equal(t, CodeMissingSession, ErrorCode(err))
	rec.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}

func TestIngressSuccessReconcilesAndClearsPending(t *testing.T) {
	rec := new(mockReconciler)
	pending := new(mockPendingStore)
	ingress := NewIngress(rec, pending)
	ctx := context.Background()

	confirmed := &models.Booking{ID: "bk-1", SessionID: "sess-1"}
	rec.On("Reconcile", ctx, "sess-1").Return(confirmed, nil)
	pending.On("GetBySession", ctx, "sess-1").Return(&models.PendingCheckoutContext{
		SpotID:    "spot-1",
		SessionID: "sess-1",
	}, nil)
	pending.On("Clear", ctx, "spot-1", "sess-1").Return(nil)

	booking, err := ingress.HandleCallback(ctx, LinkEvent{URL: "parkly://checkout/success?session_id=sess-1"})

	assert.NoError(t, err)
	assert.Equal(t, confirmed, booking)
	pending.AssertExpectations(t)
}

func TestIngressClearsPendingEvenWhenReconcileFails(t *testing.T) {
	rec := new(mockReconciler)
	pending := new(mockPendingStore)
	ingress := NewIngress(rec, pending)
	ctx := context.Background()

	rec.On("Reconcile", ctx, "sess-1").Return(nil, NewCheckoutError(CodeBookingFailed, "boom", nil))
	pending.On("GetBySession", ctx, "sess-1").Return(nil, nil)
	pending.On("Clear", ctx, "", "sess-1").Return(nil)

	booking, err := ingress.HandleCallback(ctx, LinkEvent{URL: "parkly://checkout/success?session_id=sess-1"})

	assert.Nil(t, booking)
	assert.Equal(t, CodeBookingFailed, ErrorCode(err))
	pending.AssertExpectations(t)
}

func TestIngressCancelClearsPendingBestEffort(t *testing.T) {
	rec := new(mockReconciler)
	pending := new(mockPendingStore)
	ingress := NewIngress(rec, pending)
	ctx := context.Background()

	pending.On("GetBySession", ctx, "sess-1").Return(&models.PendingCheckoutContext{
		SpotID:    "spot-1",
		SessionID: "sess-1",
	}, nil)
	pending.On("Clear", ctx, "spot-1", "sess-1").Return(nil)

	booking, err := ingress.HandleCallback(ctx, LinkEvent{URL: "parkly://checkout/cancel?session_id=sess-1"})

	assert.NoError(t, err)
	assert.Nil(t, booking)
	rec.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
	pending.AssertExpectations(t)
}

func TestDispatcherRequiresSubscriber(t *testing.T) {
	d := NewDispatcher()

	_, err := d.Dispatch(context.Background(), LinkEvent{URL: "parkly://checkout/cancel"})

	assert.ErrorIs(t, err, ErrNoSubscriber)
}

func TestDispatcherDeliversSerially(t *testing.T) {
	d := NewDispatcher()
	inFlight := 0
	maxInFlight := 0

	cancel, err := d.Subscribe(func(ctx context.Context, ev LinkEvent) (*models.Booking, error) {
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		time.Sleep(5 * time.Millisecond)
		inFlight--
		return &models.Booking{ID: ev.URL}, nil
	})
	assert.NoError(t, err)
	defer cancel()

	results := make(chan *models.Booking, 3)
	for i := 0; i < 3; i++ {
		go func(n int) {
			booking, _ := d.Dispatch(context.Background(), LinkEvent{URL: "bk"})
			results <- booking
		}(i)
	}
	for i := 0; i < 3; i++ {
		booking := <-results
		assert.NotNil(t, booking)
	}

	// The worker is the only goroutine touching the counters, so a max
	// above one would mean overlapping deliveries.
	assert.Equal(t, 1, maxInFlight)
}

func TestDispatcherSecondSubscribeFails(t *testing.T) {
	d := NewDispatcher()

	cancel, err := d.Subscribe(func(ctx context.Context, ev LinkEvent) (*models.Booking, error) {
		return nil, nil
	})
	assert.NoError(t, err)
	defer cancel()

	_, err = d.Subscribe(func(ctx context.Context, ev LinkEvent) (*models.Booking, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
}

func TestDispatcherCancelStopsDelivery(t *testing.T) {
	d := NewDispatcher()

	cancel, err := d.Subscribe(func(ctx context.Context, ev LinkEvent) (*models.Booking, error) {
		return nil, errors.New("should not run")
	})
	assert.NoError(t, err)
	cancel()

	_, err = d.Dispatch(context.Background(), LinkEvent{URL: "parkly://checkout/cancel"})
	assert.ErrorIs(t, err, ErrNoSubscriber)

	// A second subscription after cancel is allowed.
	cancel2, err := d.Subscribe(func(ctx context.Context, ev LinkEvent) (*models.Booking, error) {
		return nil, nil
	})
	assert.NoError(t, err)
	cancel2()
}
