// Package cache wraps the Cache Store (Redis). Every failure at this layer is
// converted into a miss or a no-op: callers never see cache errors, only
// absence of data. A down Redis silently degrades reads to the primary store.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/carmarket/internal/config"
	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/pkg/logger"
)

// Cache key prefixes. Keys are colon-delimited: <prefix>:<id>.
const (
	PrefixCarDetails     = "car:details"
	PrefixUserSession    = "user:session"
	PrefixCarViews       = "car:views"
	PrefixRecentSearches = "user:searches"
	PrefixPriceHistory   = "price:history"

	KeyPopularCars = "popular:cars"
)

// Key builds a colon-delimited cache key.
func Key(prefix, id string) string { return prefix + ":" + id }

type Store struct {
	rdb             *redis.Client
	carDetailsTTL   time.Duration
	recentSearchTTL time.Duration
	priceHistoryTTL time.Duration
}

func New(rdb *redis.Client, cfg config.CacheConfig) *Store {
	s := &Store{
		rdb:             rdb,
		carDetailsTTL:   cfg.CarDetailsTTL,
		recentSearchTTL: cfg.RecentSearchTTL,
		priceHistoryTTL: cfg.PriceHistoryTTL,
	}
	if s.carDetailsTTL <= 0 {
		s.carDetailsTTL = 24 * time.Hour
	}
	if s.recentSearchTTL <= 0 {
		s.recentSearchTTL = time.Hour
	}
	if s.priceHistoryTTL <= 0 {
		s.priceHistoryTTL = 24 * time.Hour
	}
	return s
}

// Get loads a JSON value into dest. Returns false on miss or any cache error.
func (s *Store) Get(ctx context.Context, prefix, id string, dest interface{}) bool {
	data, err := s.rdb.Get(ctx, Key(prefix, id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("cache get failed", zap.String("key", Key(prefix, id)), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn("cache payload unmarshal failed", zap.String("key", Key(prefix, id)), zap.Error(err))
		return false
	}
	return true
}

// Set stores a JSON value with a TTL. Failures are logged and dropped.
func (s *Store) Set(ctx context.Context, prefix, id string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn("cache payload marshal failed", zap.String("key", Key(prefix, id)), zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, Key(prefix, id), payload, ttl).Err(); err != nil {
		logger.Warn("cache set failed", zap.String("key", Key(prefix, id)), zap.Error(err))
	}
}

// Delete evicts a key. Failures are logged and dropped.
func (s *Store) Delete(ctx context.Context, prefix, id string) {
	if err := s.rdb.Del(ctx, Key(prefix, id)).Err(); err != nil {
		logger.Warn("cache delete failed", zap.String("key", Key(prefix, id)), zap.Error(err))
	}
}

// GetCarDetails returns the cached formatted listing payload, or nil on miss.
func (s *Store) GetCarDetails(ctx context.Context, carID string) *model.CarDetails {
	var details model.CarDetails
	if !s.Get(ctx, PrefixCarDetails, carID, &details) {
		return nil
	}
	return &details
}

func (s *Store) SetCarDetails(ctx context.Context, carID string, details *model.CarDetails) {
	s.Set(ctx, PrefixCarDetails, carID, details, s.carDetailsTTL)
}

func (s *Store) InvalidateCarDetails(ctx context.Context, carID string) {
	s.Delete(ctx, PrefixCarDetails, carID)
}

// Client exposes the raw client for the session store, which keeps TTL
// handling beside its own expiry semantics.
func (s *Store) Client() *redis.Client { return s.rdb }
