package handlers

import (
	"net/http"

	"parkly/services/booking"
	"parkly/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(service booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: service}
}

// ListMyBookings returns the authenticated user's bookings, newest first.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	bookings, err := h.Service.ListUserBookings(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list bookings", err.Error())
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking returns one of the authenticated user's bookings.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	entry, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "Booking not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CancelBooking cancels a booking and returns the spot to the pool.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	if err := h.Service.CancelBooking(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		utils.JSONError(c, http.StatusConflict, "Failed to cancel booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// CompleteBooking marks a booking finished and releases its spot.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	if err := h.Service.CompleteBooking(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		utils.JSONError(c, http.StatusConflict, "Failed to complete booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}
