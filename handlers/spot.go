package handlers

import (
	"net/http"
	"strconv"

	"parkly/models"
	"parkly/services/spot"
	"parkly/utils"

	"github.com/gin-gonic/gin"
)

type SpotHandler struct {
	Service spot.SpotService
}

func NewSpotHandler(service spot.SpotService) *SpotHandler {
	return &SpotHandler{Service: service}
}

// SearchSpots returns available spots near the given coordinates.
// GET /api/spots?lat=..&lng=..&radius=..&limit=..
func (h *SpotHandler) SearchSpots(c *gin.Context) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" || lngStr == "" {
		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
		spots, err := h.Service.ListAvailable(c.Request.Context(), limit)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to list spots", err.Error())
			return
		}
		c.JSON(http.StatusOK, spots)
		return
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid coordinates", "lat and lng must be numbers")
		return
	}
	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius", "2000"), 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	spots, err := h.Service.SearchNearby(c.Request.Context(), lat, lng, radius, limit)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to search spots", err.Error())
		return
	}
	c.JSON(http.StatusOK, spots)
}

// GetSpot returns a single spot by id.
func (h *SpotHandler) GetSpot(c *gin.Context) {
	spotEntry, err := h.Service.GetSpot(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "Spot not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, spotEntry)
}

type createSpotRequest struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	PricingHourly float64 `json:"pricingHourly"`
	Currency      string  `json:"currency"`
	PhotoURL      string  `json:"photoUrl"`
}

// CreateSpot registers a new spot owned by the authenticated user.
func (h *SpotHandler) CreateSpot(c *gin.Context) {
	var req createSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	entry := &models.Spot{
		OwnerID:       c.GetString("userID"),
		Name:          req.Name,
		Address:       req.Address,
		Location:      models.NewGeoPoint(req.Latitude, req.Longitude),
		PricingHourly: req.PricingHourly,
		Currency:      req.Currency,
		PhotoURL:      req.PhotoURL,
	}
	if err := h.Service.CreateSpot(c.Request.Context(), entry); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Failed to create spot", err.Error())
		return
	}
	c.JSON(http.StatusCreated, entry)
}
