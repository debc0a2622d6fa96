package spot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	spotRepo "parkly/database/repository/spot"
	"parkly/models"
	"parkly/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	spotCacheKeyPrefix = "spot:"
	spotCacheTTL       = 5 * time.Minute
)

// SpotService exposes the parking spot catalog. All availability
// transitions go through it so the cached spot entry never outlives a
// booking or release.
type SpotService interface {
	GetSpot(ctx context.Context, id string) (*models.Spot, error)
	SearchNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int64) ([]models.Spot, error)
	ListAvailable(ctx context.Context, limit int64) ([]models.Spot, error)
	CreateSpot(ctx context.Context, spot *models.Spot) error
	BookSpot(ctx context.Context, spotID, userID string, booking *models.Booking) error
	ReleaseSpot(ctx context.Context, id string) error
}

// DefaultSpotService backs the catalog with mongo, read-through cached
// in redis for single-spot lookups.
type DefaultSpotService struct {
	Repo  spotRepo.SpotRepository
	Cache *redis.Client
}

func NewDefaultSpotService(repo spotRepo.SpotRepository, cache *redis.Client) *DefaultSpotService {
	return &DefaultSpotService{Repo: repo, Cache: cache}
}

func (s *DefaultSpotService) GetSpot(ctx context.Context, id string) (*models.Spot, error) {
	if cached := s.fromCache(ctx, id); cached != nil {
		return cached, nil
	}

	spot, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, spot)
	return spot, nil
}

func (s *DefaultSpotService) SearchNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int64) ([]models.Spot, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("invalid coordinates: lat=%f lng=%f", lat, lng)
	}
	if radiusMeters <= 0 {
		radiusMeters = 2000
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Repo.Search(ctx, lat, lng, radiusMeters, limit)
}

func (s *DefaultSpotService) ListAvailable(ctx context.Context, limit int64) ([]models.Spot, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Repo.ListAvailable(ctx, limit)
}

func (s *DefaultSpotService) CreateSpot(ctx context.Context, spot *models.Spot) error {
	if spot.Name == "" {
		return fmt.Errorf("spot name is required")
	}
	if len(spot.Location.Coordinates) != 2 {
		return fmt.Errorf("spot location is required")
	}
	if spot.PricingHourly <= 0 {
		return fmt.Errorf("spot hourly price must be positive")
	}

	if spot.ID == "" {
		spot.ID = uuid.New().String()
	}
	spot.Available = true
	spot.CreatedAt = time.Now()
	return s.Repo.Create(ctx, spot)
}

// BookSpot runs the atomic booking transaction and drops the cached
// entry so reads see the flipped availability immediately. The entry
// is also dropped when the spot turns out to be taken, since the
// cached available flag is stale either way.
func (s *DefaultSpotService) BookSpot(ctx context.Context, spotID, userID string, booking *models.Booking) error {
	err := s.Repo.BookSpotAtomically(ctx, spotID, userID, booking)
	if err == nil || errors.Is(err, spotRepo.ErrSpotUnavailable) {
		s.invalidate(ctx, spotID)
	}
	return err
}

func (s *DefaultSpotService) ReleaseSpot(ctx context.Context, id string) error {
	if err := s.Repo.Release(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *DefaultSpotService) fromCache(ctx context.Context, id string) *models.Spot {
	if s.Cache == nil {
		return nil
	}
	data, err := s.Cache.Get(ctx, spotCacheKeyPrefix+id).Result()
	if err != nil {
		return nil
	}
	var spot models.Spot
	if err := json.Unmarshal([]byte(data), &spot); err != nil {
		return nil
	}
	return &spot
}

func (s *DefaultSpotService) toCache(ctx context.Context, spot *models.Spot) {
	if s.Cache == nil {
		return
	}
	data, err := json.Marshal(spot)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, spotCacheKeyPrefix+spot.ID, data, spotCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("Failed to cache spot", zap.String("spotID", spot.ID), zap.Error(err))
	}
}

func (s *DefaultSpotService) invalidate(ctx context.Context, id string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, spotCacheKeyPrefix+id).Err(); err != nil {
		utils.GetLogger().Warn("Failed to invalidate spot cache", zap.String("spotID", id), zap.Error(err))
	}
}
