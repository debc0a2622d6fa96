package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"parkly/models"

	"github.com/go-redis/redis/v8"
)

// PendingTTL bounds how long an abandoned checkout context lingers.
const PendingTTL = 24 * time.Hour

const (
	pendingSpotKeyPrefix    = "checkout:pending:spot:"
	pendingSessionKeyPrefix = "checkout:pending:session:"
)

// RedisPendingStore implements PendingStore on a dedicated Redis DB. The
// context is written under both the spot id and the session id so either
// side of the flow can find it.
type RedisPendingStore struct {
	Client *redis.Client
}

func NewRedisPendingStore(client *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{Client: client}
}

func (s *RedisPendingStore) Save(ctx context.Context, pending *models.PendingCheckoutContext) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending checkout: %w", err)
	}

	pipe := s.Client.TxPipeline()
	pipe.Set(ctx, pendingSpotKeyPrefix+pending.SpotID, data, PendingTTL)
	pipe.Set(ctx, pendingSessionKeyPrefix+pending.SessionID, data, PendingTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save pending checkout: %w", err)
	}
	return nil
}

func (s *RedisPendingStore) GetBySpot(ctx context.Context, spotID string) (*models.PendingCheckoutContext, error) {
	return s.get(ctx, pendingSpotKeyPrefix+spotID)
}

func (s *RedisPendingStore) GetBySession(ctx context.Context, sessionID string) (*models.PendingCheckoutContext, error) {
	return s.get(ctx, pendingSessionKeyPrefix+sessionID)
}

func (s *RedisPendingStore) get(ctx context.Context, key string) (*models.PendingCheckoutContext, error) {
	data, err := s.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending checkout: %w", err)
	}

	var pending models.PendingCheckoutContext
	if err := json.Unmarshal([]byte(data), &pending); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending checkout: %w", err)
	}
	return &pending, nil
}

func (s *RedisPendingStore) Clear(ctx context.Context, spotID, sessionID string) error {
	keys := make([]string, 0, 2)
	if spotID != "" {
		keys = append(keys, pendingSpotKeyPrefix+spotID)
	}
	if sessionID != "" {
		keys = append(keys, pendingSessionKeyPrefix+sessionID)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.Client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear pending checkout: %w", err)
	}
	return nil
}
