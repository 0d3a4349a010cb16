package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/carmarket/pkg/logger"
)

// IncrementCarView bumps the per-car counter and mirrors the new score into
// the popular:cars sorted set. The two writes are not coupled; if either
// fails the other may still land. Returns 0 on any failure.
func (s *Store) IncrementCarView(ctx context.Context, carID string) int64 {
	count, err := s.rdb.Incr(ctx, Key(PrefixCarViews, carID)).Result()
	if err != nil {
		logger.Warn("view counter incr failed", zap.String("car_id", carID), zap.Error(err))
		return 0
	}
	if err := s.rdb.ZAdd(ctx, KeyPopularCars, redis.Z{Score: float64(count), Member: carID}).Err(); err != nil {
		logger.Warn("popularity zadd failed", zap.String("car_id", carID), zap.Error(err))
	}
	return count
}

// CarViewCount reads the Redis-side counter; 0 on miss or failure.
func (s *Store) CarViewCount(ctx context.Context, carID string) int64 {
	count, err := s.rdb.Get(ctx, Key(PrefixCarViews, carID)).Int64()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("view counter get failed", zap.String("car_id", carID), zap.Error(err))
		}
		return 0
	}
	return count
}

// MostViewed returns car ids ordered by view score, highest first.
func (s *Store) MostViewed(ctx context.Context, limit int) []string {
	if limit <= 0 {
		limit = 10
	}
	ids, err := s.rdb.ZRevRange(ctx, KeyPopularCars, 0, int64(limit-1)).Result()
	if err != nil {
		logger.Warn("popularity range failed", zap.Error(err))
		return nil
	}
	return ids
}

// RemoveFromPopular drops a deleted car from the ranking and its counter.
func (s *Store) RemoveFromPopular(ctx context.Context, carID string) {
	pipe := s.rdb.Pipeline()
	pipe.ZRem(ctx, KeyPopularCars, carID)
	pipe.Del(ctx, Key(PrefixCarViews, carID))
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("popularity cleanup failed", zap.String("car_id", carID), zap.Error(err))
	}
}
