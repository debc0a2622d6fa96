package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parkly/config"
	bookingRepo "parkly/database/repository/booking"
	"parkly/models"
	"parkly/services/spot"
	"parkly/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeExpireBooking = "booking:expire"
	TypeExpirySweep   = "booking:sweep"
)

type expireBookingPayload struct {
	BookingID string `json:"bookingId"`
}

// ExpiryWorker releases spots whose bookings have run out. A periodic
// sweep finds expired bookings and fans them out as individual tasks so
// each release gets its own retries.
type ExpiryWorker struct {
	Bookings bookingRepo.BookingRepository
	Spots    spot.SpotService

	client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
}

func NewExpiryWorker(bookings bookingRepo.BookingRepository, spots spot.SpotService) *ExpiryWorker {
	redisOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	return &ExpiryWorker{
		Bookings: bookings,
		Spots:    spots,
		client:   asynq.NewClient(redisOpt),
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: 5,
		}),
		scheduler: asynq.NewScheduler(redisOpt, nil),
	}
}

// Start runs the task server and registers the periodic sweep.
func (w *ExpiryWorker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeExpireBooking, w.handleExpireBooking)
	mux.HandleFunc(TypeExpirySweep, w.handleSweep)

	if _, err := w.scheduler.Register("@every 1m", asynq.NewTask(TypeExpirySweep, nil)); err != nil {
		return fmt.Errorf("failed to register expiry sweep: %w", err)
	}
	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start expiry scheduler: %w", err)
	}
	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start expiry worker: %w", err)
	}
	return nil
}

func (w *ExpiryWorker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	_ = w.client.Close()
}

func (w *ExpiryWorker) handleSweep(ctx context.Context, _ *asynq.Task) error {
	logger := utils.GetLogger()

	expired, err := w.Bookings.ListExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("expiry sweep failed: %w", err)
	}

	for _, booking := range expired {
		payload, err := json.Marshal(expireBookingPayload{BookingID: booking.ID})
		if err != nil {
			continue
		}
		task := asynq.NewTask(TypeExpireBooking, payload)
		// The task id dedupes sweeps that overlap the same booking.
		_, err = w.client.EnqueueContext(ctx, task,
			asynq.TaskID("expire:"+booking.ID),
			asynq.MaxRetry(3))
		if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
			logger.Warn("Failed to enqueue booking expiry",
				zap.String("bookingID", booking.ID), zap.Error(err))
		}
	}

	if len(expired) > 0 {
		logger.Info("Expiry sweep enqueued bookings", zap.Int("count", len(expired)))
	}
	return nil
}

func (w *ExpiryWorker) handleExpireBooking(ctx context.Context, task *asynq.Task) error {
	var payload expireBookingPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid expiry payload: %w", err)
	}

	booking, err := w.Bookings.GetByID(ctx, payload.BookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %s: %w", payload.BookingID, err)
	}
	if booking.Status != models.BookingActive && booking.Status != models.BookingConfirmed {
		return nil
	}

	if err := w.Bookings.UpdateStatus(ctx, booking.ID, models.BookingCompleted); err != nil {
		return fmt.Errorf("failed to complete booking %s: %w", booking.ID, err)
	}
	if err := w.Spots.ReleaseSpot(ctx, booking.SpotID); err != nil {
		return fmt.Errorf("failed to release spot %s: %w", booking.SpotID, err)
	}

	utils.GetLogger().Info("Expired booking completed",
		zap.String("bookingID", booking.ID),
		zap.String("spotID", booking.SpotID))
	return nil
}
