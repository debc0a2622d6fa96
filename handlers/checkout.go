package handlers

import (
	"net/http"
	"time"

	paymentRepo "parkly/database/repository/payment"
	"parkly/models"
	"parkly/services/checkout"
	"parkly/services/spot"
	"parkly/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutHandler exposes the payment endpoints and the deep-link
// callback routes the payment provider redirects back to.
type CheckoutHandler struct {
	Gateway    checkout.PaymentGateway
	Pending    checkout.PendingStore
	Spots      spot.SpotService
	Payments   paymentRepo.PaymentRepository
	Dispatcher *checkout.Dispatcher
}

func NewCheckoutHandler(
	gateway checkout.PaymentGateway,
	pending checkout.PendingStore,
	spots spot.SpotService,
	payments paymentRepo.PaymentRepository,
	dispatcher *checkout.Dispatcher,
) *CheckoutHandler {
	return &CheckoutHandler{
		Gateway:    gateway,
		Pending:    pending,
		Spots:      spots,
		Payments:   payments,
		Dispatcher: dispatcher,
	}
}

type createCheckoutRequest struct {
	Amount *int64 `json:"amount"`
	UserID string `json:"userId"`
	SpotID string `json:"spotId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// CreateCheckoutSession opens a hosted payment page for a spot and
// stashes the pending checkout context before returning the redirect URL.
func (h *CheckoutHandler) CreateCheckoutSession(c *gin.Context) {
	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if req.Amount == nil || *req.Amount <= 0 || req.SpotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and spotId are required"})
		return
	}
	if *req.Amount < checkout.MinChargeAmount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is below the minimum chargeable amount"})
		return
	}

	logger := utils.GetLogger()

	redirect, err := h.Gateway.CreateSession(c.Request.Context(), checkout.CreateSessionRequest{
		Amount: *req.Amount,
		UserID: req.UserID,
		SpotID: req.SpotID,
		Name:   req.Name,
		Email:  req.Email,
	})
	if err != nil {
		logger.Error("Failed to create checkout session",
			zap.String("spotID", req.SpotID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	pending := h.buildPendingContext(c, req, redirect.SessionID)
	if err := h.Pending.Save(c.Request.Context(), pending); err != nil {
		// The reconciler can rebuild most of this from the verified
		// session, so a save failure does not abort the checkout.
		logger.Warn("Failed to save pending checkout context",
			zap.String("sessionID", redirect.SessionID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"url": redirect.URL})
}

func (h *CheckoutHandler) buildPendingContext(c *gin.Context, req createCheckoutRequest, sessionID string) *models.PendingCheckoutContext {
	pending := &models.PendingCheckoutContext{
		SpotID:    req.SpotID,
		SessionID: sessionID,
		SpotName:  req.Name,
		CreatedAt: time.Now(),
	}
	if s, err := h.Spots.GetSpot(c.Request.Context(), req.SpotID); err == nil {
		lat, lng := s.Latitude(), s.Longitude()
		pending.SpotName = s.Name
		pending.SpotAddress = s.Address
		pending.SpotLatitude = &lat
		pending.SpotLongitude = &lng
		pending.PricingHourly = s.PricingHourly
		pending.Currency = s.Currency
	}
	return pending
}

type verifyCheckoutRequest struct {
	SessionID string `json:"sessionId"`
}

// VerifyCheckoutSession re-reads a session from the payment provider so
// the client never decides payment state on its own.
func (h *CheckoutHandler) VerifyCheckoutSession(c *gin.Context) {
	var req verifyCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	verified, err := h.Gateway.VerifySession(c.Request.Context(), req.SessionID)
	if err != nil {
		utils.GetLogger().Error("Failed to verify checkout session",
			zap.String("sessionID", req.SessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify checkout session"})
		return
	}

	if verified.Paid {
		h.ensurePaymentRecord(c, verified)
	}

	c.JSON(http.StatusOK, verified)
}

// ensurePaymentRecord writes the payment row the first time a paid
// session is observed. Best effort: the reconciler tolerates its absence.
func (h *CheckoutHandler) ensurePaymentRecord(c *gin.Context, verified *models.VerifiedSession) {
	ctx := c.Request.Context()
	existing, err := h.Payments.FindBySession(ctx, verified.SessionID, verified.UserID)
	if err != nil || existing != nil {
		return
	}

	payment := &models.Payment{
		ID:        uuid.New().String(),
		SessionID: verified.SessionID,
		UserID:    verified.UserID,
		Currency:  verified.Currency,
		Status:    models.PaymentPending,
		CreatedAt: time.Now(),
	}
	if verified.Amount != nil {
		payment.Amount = *verified.Amount
	}
	if err := h.Payments.Create(ctx, payment); err != nil {
		utils.GetLogger().Warn("Failed to record payment",
			zap.String("sessionID", verified.SessionID), zap.Error(err))
	}
}

// SuccessCallback handles the provider's success redirect. The event is
// dispatched through the serial queue so reconciliations never overlap.
func (h *CheckoutHandler) SuccessCallback(c *gin.Context) {
	h.dispatchCallback(c)
}

// CancelCallback handles the provider's cancel redirect.
func (h *CheckoutHandler) CancelCallback(c *gin.Context) {
	h.dispatchCallback(c)
}

func (h *CheckoutHandler) dispatchCallback(c *gin.Context) {
	ev := checkout.LinkEvent{URL: c.Request.URL.String()}
	booking, err := h.Dispatcher.Dispatch(c.Request.Context(), ev)
	if err != nil {
		status, message := callbackError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}
	if booking != nil {
		c.JSON(http.StatusOK, gin.H{"status": "confirmed", "booking": booking})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func callbackError(err error) (int, string) {
	switch checkout.ErrorCode(err) {
	case checkout.CodeMissingSession:
		return http.StatusBadRequest, "The checkout callback is missing a session id"
	case checkout.CodeNotPaid:
		return http.StatusPaymentRequired, "The payment session has not been paid"
	case checkout.CodeVerificationFailed:
		return http.StatusBadGateway, "Could not verify the payment session"
	case checkout.CodeBookingFailed:
		return http.StatusInternalServerError, "Payment succeeded but the booking could not be created. Please check your bookings."
	case checkout.CodeMissingSpot, checkout.CodeNoUser:
		return http.StatusInternalServerError, "The payment session is missing required details"
	default:
		return http.StatusInternalServerError, "Failed to process the checkout callback"
	}
}
