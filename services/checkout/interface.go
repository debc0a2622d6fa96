package checkout

import (
	"context"

	"parkly/models"
)

// MinChargeAmount is the smallest charge the payment provider accepts,
// in minor currency units.
const MinChargeAmount = 50

// CreateSessionRequest carries everything needed to open a hosted
// payment page for a spot. Amount is in minor currency units.
type CreateSessionRequest struct {
	Amount int64
	UserID string
	SpotID string
	Name   string
	Email  string
}

// CheckoutRedirect is the provider-hosted page the client must open.
type CheckoutRedirect struct {
	SessionID string
	URL       string
}

// PaymentGateway abstracts the payment provider. CreateSession opens a
// hosted checkout page; VerifySession re-reads a session server-side so
// payment state is never trusted from the client.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutRedirect, error)
	VerifySession(ctx context.Context, sessionID string) (*models.VerifiedSession, error)
}

// PendingStore holds the short-lived checkout context written before the
// user leaves for the payment page. Lookups for absent keys return
// (nil, nil): a missing context degrades the flow, it never aborts it.
type PendingStore interface {
	Save(ctx context.Context, pending *models.PendingCheckoutContext) error
	GetBySpot(ctx context.Context, spotID string) (*models.PendingCheckoutContext, error)
	GetBySession(ctx context.Context, sessionID string) (*models.PendingCheckoutContext, error)
	// Clear removes the context under both keys. Empty ids are skipped.
	Clear(ctx context.Context, spotID, sessionID string) error
}

// Reconciler turns a completed payment session into a confirmed booking.
type Reconciler interface {
	Reconcile(ctx context.Context, sessionID string) (*models.Booking, error)
}
