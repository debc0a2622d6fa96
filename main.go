package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkly/config"
	"parkly/database"
	bookingRepoPkg "parkly/database/repository/booking"
	paymentRepoPkg "parkly/database/repository/payment"
	reviewRepoPkg "parkly/database/repository/review"
	spotRepoPkg "parkly/database/repository/spot"
	userRepoPkg "parkly/database/repository/user"
	"parkly/handlers"
	"parkly/routes"
	"parkly/services/booking"
	"parkly/services/checkout"
	"parkly/services/notification"
	"parkly/services/review"
	"parkly/services/spot"
	"parkly/services/user"
	"parkly/utils"
	"parkly/workers"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	if config.AppConfig.FirebaseCredentialsFile != "" {
		utils.FirebaseInit()
	} else {
		logger.Sugar().Warn("main: no firebase credentials configured, push notifications disabled")
	}

	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	spotRepo := spotRepoPkg.NewMongoSpotRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	paymentRepo := paymentRepoPkg.NewMongoPaymentRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()
	reviewRepo := reviewRepoPkg.NewMongoReviewRepo()

	// services.
	spotService := spot.NewDefaultSpotService(spotRepo, utils.GetCacheClient())
	bookingService := booking.NewDefaultBookingService(bookingRepo, spotService)
	userService := user.NewDefaultUserService(userRepo)
	reviewService := review.NewDefaultReviewService(reviewRepo, bookingRepo, spotRepo)

	var notifier notification.NotificationService
	if utils.FCMClient != nil {
		notifier = notification.NewFCMNotificationService(userRepo)
	}

	// checkout flow.
	gateway := checkout.NewStripeGateway()
	pendingStore := checkout.NewRedisPendingStore(utils.GetPendingCacheClient())
	reconciler := checkout.NewDefaultReconciler(
		gateway,
		userRepo,
		paymentRepo,
		bookingRepo,
		spotService,
		pendingStore,
		notifier,
		config.AppConfig.DefaultCurrency,
	)
	ingress := checkout.NewIngress(reconciler, pendingStore)
	dispatcher := checkout.NewDispatcher()
	unsubscribe, err := dispatcher.Subscribe(ingress.HandleCallback)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to subscribe checkout ingress: %v", err)
	}
	defer unsubscribe()

	// background worker releasing spots from expired bookings.
	expiryWorker := workers.NewExpiryWorker(bookingRepo, spotService)
	if err := expiryWorker.Start(); err != nil {
		logger.Sugar().Fatalf("main: failed to start expiry worker: %v", err)
	}
	defer expiryWorker.Shutdown()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	routes.SetupRoutes(router, routes.Handlers{
		Checkout: handlers.NewCheckoutHandler(gateway, pendingStore, spotService, paymentRepo, dispatcher),
		Spot:     handlers.NewSpotHandler(spotService),
		Booking:  handlers.NewBookingHandler(bookingService),
		User:     handlers.NewUserHandler(userService),
		Review:   handlers.NewReviewHandler(reviewService),
	})

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
