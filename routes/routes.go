package routes

import (
	"net/http"

	"parkly/handlers"
	"parkly/middleware"
	"parkly/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Checkout *handlers.CheckoutHandler
	Spot     *handlers.SpotHandler
	Booking  *handlers.BookingHandler
	User     *handlers.UserHandler
	Review   *handlers.ReviewHandler
}

// SetupRoutes wires middleware and every route group onto the engine.
func SetupRoutes(router *gin.Engine, h Handlers) {
	router.HandleMethodNotAllowed = true

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RateLimiter())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Payment provider redirects land here; no auth, the session id is
	// the credential and is re-verified server-side.
	callbacks := router.Group("/checkout/callback")
	{
		callbacks.GET("/success", h.Checkout.SuccessCallback)
		callbacks.GET("/cancel", h.Checkout.CancelCallback)
	}

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.User.Register)
		api.POST("/auth/login", h.User.Login)

		api.GET("/spots", h.Spot.SearchSpots)
		api.GET("/spots/:id", h.Spot.GetSpot)
		api.GET("/spots/:id/reviews", h.Review.ListSpotReviews)

		payments := api.Group("/payments")
		{
			payments.POST("/create-checkout-session", h.Checkout.CreateCheckoutSession)
			payments.POST("/verify-checkout-session", h.Checkout.VerifyCheckoutSession)
		}

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.GET("/users/me", h.User.Me)
			authed.POST("/users/me/device-token", h.User.RegisterDeviceToken)

			authed.POST("/spots", h.Spot.CreateSpot)
			authed.POST("/spots/:id/reviews", h.Review.AddReview)

			authed.GET("/bookings", h.Booking.ListMyBookings)
			authed.GET("/bookings/:id", h.Booking.GetBooking)
			authed.POST("/bookings/:id/cancel", h.Booking.CancelBooking)
			authed.POST("/bookings/:id/complete", h.Booking.CompleteBooking)
		}
	}

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}
