// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"parkly/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (spot catalog, hot documents).
	CacheClient *redis.Client
	// PendingCacheClient is the dedicated client for pending checkout contexts.
	PendingCacheClient *redis.Client
)

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitPendingCache initializes the Redis client holding pending checkout
// contexts. Kept on its own DB so a cache flush cannot drop in-flight
// checkout state.
func InitPendingCache() {
	PendingCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisPendingDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := PendingCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Pending Checkout): %v", err)
	}
}

// GetPendingCacheClient returns the Redis client for pending checkout contexts.
func GetPendingCacheClient() *redis.Client {
	if PendingCacheClient == nil {
		InitPendingCache()
	}
	return PendingCacheClient
}

// InitRedis initializes all Redis clients.
func InitRedis() {
	InitCache()
	InitPendingCache()
}
