package checkout

import (
	"context"
	"fmt"
	"strings"

	"parkly/config"
	"parkly/models"
	"parkly/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"go.uber.org/zap"
)

// StripeGateway implements PaymentGateway on Stripe Checkout. The API key
// is set globally at startup (stripe.Key).
type StripeGateway struct {
	SuccessURL string
	CancelURL  string
	Currency   string
}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{
		SuccessURL: config.AppConfig.CheckoutSuccessURL,
		CancelURL:  config.AppConfig.CheckoutCancelURL,
		Currency:   config.AppConfig.DefaultCurrency,
	}
}

func (g *StripeGateway) CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutRedirect, error) {
	if req.Amount < MinChargeAmount {
		return nil, fmt.Errorf("amount %d is below the provider minimum of %d", req.Amount, MinChargeAmount)
	}

	productName := req.Name
	if productName == "" {
		productName = "Parking Spot"
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		// The provider substitutes the session id into the placeholder,
		// so the success deep link always carries it.
		SuccessURL: stripe.String(g.SuccessURL),
		CancelURL:  stripe.String(g.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(g.Currency)),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(productName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.AddMetadata("userId", req.UserID)
	params.AddMetadata("spotId", req.SpotID)

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	utils.GetLogger().Info("Checkout session created",
		zap.String("sessionID", s.ID),
		zap.String("spotID", req.SpotID))
	return &CheckoutRedirect{SessionID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) VerifySession(ctx context.Context, sessionID string) (*models.VerifiedSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", sessionID, err)
	}

	verified := &models.VerifiedSession{
		SessionID: s.ID,
		Paid:      s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Currency:  string(s.Currency),
	}
	if s.Metadata != nil {
		verified.SpotID = s.Metadata["spotId"]
		verified.UserID = s.Metadata["userId"]
	}
	if s.CustomerDetails != nil {
		verified.Email = s.CustomerDetails.Email
	}
	if verified.Email == "" {
		verified.Email = s.CustomerEmail
	}
	if s.AmountTotal != 0 {
		verified.Amount = majorUnits(s.AmountTotal)
	}
	return verified, nil
}

// majorUnits converts a provider amount in minor units to major units.
func majorUnits(total int64) *float64 {
	amount := float64(total) / 100
	return &amount
}
