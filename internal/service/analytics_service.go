package service

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/carmarket/internal/cache"
	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/internal/repository"
	"github.com/d60-Lab/carmarket/pkg/logger"
)

// AnalyticsService 对比埋点 + 价格序列 + 管理端聚合读取
type AnalyticsService interface {
	// LogComparison 异步落一条对比日志
	LogComparison(userID string, carIDs []string)
	// CompareSpecs 从镜像表取规格行做对比
	CompareSpecs(ctx context.Context, carIDs []string) ([]*model.CarSpec, error)

	PopularQueries(ctx context.Context, limit int) ([]repository.QueryCount, error)
	PopularFeatures(ctx context.Context, limit int) ([]*model.FeaturePopularity, error)
	ViewTrends(ctx context.Context, days int) ([]repository.ViewTrend, error)
	MostViewedFromLogs(ctx context.Context, limit int) ([]repository.CarViewCount, error)
	PriceHistory(ctx context.Context, carMake, carModel string) []cache.PricePoint
}

type analyticsService struct {
	specs  repository.CarSpecRepository
	events repository.EventLogRepository
	prices repository.PriceHistoryRepository
	cars   repository.CarRepository
	cache  *cache.Store
	runner *AsyncRunner
}

func NewAnalyticsService(
	specs repository.CarSpecRepository,
	events repository.EventLogRepository,
	prices repository.PriceHistoryRepository,
	cars repository.CarRepository,
	cacheStore *cache.Store,
	runner *AsyncRunner,
) AnalyticsService {
	return &analyticsService{
		specs:  specs,
		events: events,
		prices: prices,
		cars:   cars,
		cache:  cacheStore,
		runner: runner,
	}
}

func (s *analyticsService) LogComparison(userID string, carIDs []string) {
	ids, err := json.Marshal(carIDs)
	if err != nil {
		logger.Warn("comparison ids marshal failed", zap.Error(err))
		return
	}
	s.runner.Enqueue("log comparison", func(ctx context.Context) error {
		return s.events.LogComparison(ctx, &model.CarComparison{
			UserID:    userID,
			CarIDs:    string(ids),
			Timestamp: time.Now(),
		})
	})
}

func (s *analyticsService) CompareSpecs(ctx context.Context, carIDs []string) ([]*model.CarSpec, error) {
	return s.specs.FindByCarIDs(ctx, carIDs)
}

func (s *analyticsService) PopularQueries(ctx context.Context, limit int) ([]repository.QueryCount, error) {
	return s.events.PopularQueries(ctx, limit)
}

func (s *analyticsService) PopularFeatures(ctx context.Context, limit int) ([]*model.FeaturePopularity, error) {
	return s.events.PopularFeatures(ctx, limit)
}

func (s *analyticsService) ViewTrends(ctx context.Context, days int) ([]repository.ViewTrend, error) {
	return s.events.ViewTrends(ctx, days)
}

func (s *analyticsService) MostViewedFromLogs(ctx context.Context, limit int) ([]repository.CarViewCount, error) {
	return s.events.MostViewed(ctx, limit)
}

// PriceHistory 价格序列：缓存 → Analytics Store → 按在售实价生成并落库。
// 目录里完全没有该车型时才退回合成序列，合成结果只进缓存不落库。
func (s *analyticsService) PriceHistory(ctx context.Context, carMake, carModel string) []cache.PricePoint {
	if series := s.cache.GetPriceHistory(ctx, carMake, carModel); series != nil {
		return series
	}

	rows, err := s.prices.FindSeries(ctx, carMake, carModel)
	if err != nil {
		logger.Warn("price history read failed",
			zap.String("make", carMake), zap.String("model", carModel), zap.Error(err))
	}
	if len(rows) == 0 {
		rows = s.buildPriceHistory(ctx, carMake, carModel)
	}
	if len(rows) == 0 {
		series := syntheticPriceHistory()
		s.cache.SetPriceHistory(ctx, carMake, carModel, series)
		return series
	}

	series := make([]cache.PricePoint, 0, len(rows))
	for _, row := range rows {
		series = append(series, cache.PricePoint{
			Date:  row.Date.Format("2006-01-02"),
			Price: row.AveragePrice,
		})
	}
	s.cache.SetPriceHistory(ctx, carMake, carModel, series)
	return series
}

// buildPriceHistory 按当前在售价格聚合出 12 个月序列并落库；月份越早价格越低。
func (s *analyticsService) buildPriceHistory(ctx context.Context, carMake, carModel string) []*model.PriceHistory {
	cars, err := s.cars.FindByMakeModel(ctx, carMake, carModel)
	if err != nil {
		logger.Warn("price history source read failed",
			zap.String("make", carMake), zap.String("model", carModel), zap.Error(err))
		return nil
	}
	if len(cars) == 0 {
		return nil
	}

	sum, minPrice, maxPrice := 0, cars[0].Price, cars[0].Price
	for _, car := range cars {
		sum += car.Price
		if car.Price < minPrice {
			minPrice = car.Price
		}
		if car.Price > maxPrice {
			maxPrice = car.Price
		}
	}
	avg := sum / len(cars)

	now := time.Now()
	rows := make([]*model.PriceHistory, 0, 12)
	for i := 11; i >= 0; i-- {
		monthFactor := 1 - float64(i)*0.005
		randomFactor := 0.98 + rand.Float64()*0.04
		rows = append(rows, &model.PriceHistory{
			Make:         carMake,
			Model:        carModel,
			Date:         now.AddDate(0, -i, 0),
			AveragePrice: int(float64(avg) * monthFactor * randomFactor),
			MinPrice:     int(float64(minPrice) * monthFactor * randomFactor * 0.9),
			MaxPrice:     int(float64(maxPrice) * monthFactor * randomFactor * 1.1),
			SampleSize:   len(cars),
		})
	}
	if err := s.prices.Insert(ctx, rows); err != nil {
		logger.Warn("price history persist failed",
			zap.String("make", carMake), zap.String("model", carModel), zap.Error(err))
	}
	return rows
}

// syntheticPriceHistory 空目录兜底的 12 个月模拟序列
func syntheticPriceHistory() []cache.PricePoint {
	series := make([]cache.PricePoint, 0, 12)
	now := time.Now()
	base := 20000 + rand.Float64()*10000
	for i := 11; i >= 0; i-- {
		fluctuation := 0.95 + rand.Float64()*0.1
		series = append(series, cache.PricePoint{
			Date:  now.AddDate(0, -i, 0).Format("2006-01-02"),
			Price: int(base * fluctuation * (1 - float64(i)*0.01)),
		})
	}
	return series
}
