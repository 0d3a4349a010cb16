package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/carmarket/internal/cache"
	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/internal/repository"
	"github.com/d60-Lab/carmarket/pkg/logger"
)

// SearchService 车源检索 + 搜索埋点
type SearchService interface {
	// Search 只返回 active 车源；登录用户记录最近搜索，
	// 搜索日志与过滤条件热度异步落 Analytics。
	Search(ctx context.Context, q repository.CarQuery, userID string) ([]model.CarSummary, error)
	Similar(ctx context.Context, carID string) ([]model.CarSummary, error)
	Featured(ctx context.Context) ([]model.CarSummary, error)
	RecentSearches(ctx context.Context, userID string) []cache.SearchEntry
}

type searchService struct {
	cars   repository.CarRepository
	events repository.EventLogRepository
	cache  *cache.Store
	runner *AsyncRunner
}

func NewSearchService(
	cars repository.CarRepository,
	events repository.EventLogRepository,
	cacheStore *cache.Store,
	runner *AsyncRunner,
) SearchService {
	return &searchService{cars: cars, events: events, cache: cacheStore, runner: runner}
}

func (s *searchService) Search(ctx context.Context, q repository.CarQuery, userID string) ([]model.CarSummary, error) {
	cars, err := s.cars.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if userID != "" && q.Query != "" {
		s.cache.TrackSearch(ctx, userID, q.Query)
	}

	filters := filterMap(q)
	resultCount := len(cars)
	s.runner.Enqueue("log search", func(ctx context.Context) error {
		payload, err := json.Marshal(filters)
		if err != nil {
			logger.Warn("search filters marshal failed", zap.Error(err))
		}
		if err := s.events.LogSearch(ctx, &model.SearchLog{
			UserID:      userID,
			Query:       q.Query,
			Filters:     string(payload),
			ResultCount: resultCount,
			Timestamp:   time.Now(),
		}); err != nil {
			return err
		}
		for feature := range filters {
			if err := s.events.BumpFeature(ctx, feature); err != nil {
				return err
			}
		}
		return nil
	})

	return summarize(cars, false), nil
}

func (s *searchService) Similar(ctx context.Context, carID string) ([]model.CarSummary, error) {
	car, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	similar, err := s.cars.Similar(ctx, car, 3)
	if err != nil {
		return nil, err
	}
	return summarize(similar, false), nil
}

func (s *searchService) Featured(ctx context.Context) ([]model.CarSummary, error) {
	cars, err := s.cars.Featured(ctx, 4)
	if err != nil {
		return nil, err
	}
	return summarize(cars, true), nil
}

func (s *searchService) RecentSearches(ctx context.Context, userID string) []cache.SearchEntry {
	return s.cache.RecentSearches(ctx, userID)
}

// filterMap 非空过滤条件的键值视图，进搜索日志也喂热度计数。
func filterMap(q repository.CarQuery) map[string]interface{} {
	filters := map[string]interface{}{}
	if q.Make != "" && q.Make != "all" {
		filters["make"] = q.Make
	}
	if q.Category != "" {
		filters["category"] = q.Category
	}
	if q.MinPrice > 0 {
		filters["minPrice"] = q.MinPrice
	}
	if q.MaxPrice > 0 {
		filters["maxPrice"] = q.MaxPrice
	}
	if q.MinYear > 0 {
		filters["minYear"] = q.MinYear
	}
	if q.MaxYear > 0 {
		filters["maxYear"] = q.MaxYear
	}
	if len(q.Makes) > 0 {
		filters["makes"] = q.Makes
	}
	if len(q.BodyTypes) > 0 {
		filters["bodyTypes"] = q.BodyTypes
	}
	if len(q.FuelTypes) > 0 {
		filters["fuelTypes"] = q.FuelTypes
	}
	return filters
}
