package handlers

import (
	"net/http"

	"parkly/models"
	"parkly/services/review"
	"parkly/utils"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	Service review.ReviewService
}

func NewReviewHandler(service review.ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: service}
}

type addReviewRequest struct {
	BookingID string `json:"bookingId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// AddReview records a rating for a spot by the authenticated user.
func (h *ReviewHandler) AddReview(c *gin.Context) {
	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	entry := &models.Review{
		SpotID:    c.Param("id"),
		UserID:    c.GetString("userID"),
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	created, err := h.Service.AddReview(c.Request.Context(), entry)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to add review", err.Error())
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListSpotReviews returns a spot's reviews, newest first.
func (h *ReviewHandler) ListSpotReviews(c *gin.Context) {
	reviews, err := h.Service.ListSpotReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list reviews", err.Error())
		return
	}
	c.JSON(http.StatusOK, reviews)
}
