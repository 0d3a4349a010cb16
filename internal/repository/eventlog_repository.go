package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/carmarket/internal/model"
)

// QueryCount 聚合查询结果行
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

type ViewTrend struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type CarViewCount struct {
	CarID string `json:"carId"`
	Count int64  `json:"count"`
}

// EventLogRepository 追加式事件日志 + 聚合读取
type EventLogRepository interface {
	LogSearch(ctx context.Context, entry *model.SearchLog) error
	LogView(ctx context.Context, entry *model.CarView) error
	LogComparison(ctx context.Context, entry *model.CarComparison) error
	// BumpFeature 过滤条件命中计数 +1，不存在则插入。
	BumpFeature(ctx context.Context, feature string) error

	PopularQueries(ctx context.Context, limit int) ([]QueryCount, error)
	PopularFeatures(ctx context.Context, limit int) ([]*model.FeaturePopularity, error)
	ViewTrends(ctx context.Context, days int) ([]ViewTrend, error)
	MostViewed(ctx context.Context, limit int) ([]CarViewCount, error)
}

type eventLogRepository struct {
	db *gorm.DB
}

func NewEventLogRepository(db *gorm.DB) EventLogRepository { return &eventLogRepository{db: db} }

func (r *eventLogRepository) LogSearch(ctx context.Context, entry *model.SearchLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *eventLogRepository) LogView(ctx context.Context, entry *model.CarView) error {
	if entry.ViewDate.IsZero() {
		entry.ViewDate = time.Now()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *eventLogRepository) LogComparison(ctx context.Context, entry *model.CarComparison) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *eventLogRepository) BumpFeature(ctx context.Context, feature string) error {
	row := &model.FeaturePopularity{Feature: feature, SearchCount: 1, LastUpdated: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "feature"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"search_count": gorm.Expr("feature_popularity.search_count + 1"),
			"last_updated": time.Now(),
		}),
	}).Create(row).Error
}

func (r *eventLogRepository) PopularQueries(ctx context.Context, limit int) ([]QueryCount, error) {
	var rows []QueryCount
	err := r.db.WithContext(ctx).
		Model(&model.SearchLog{}).
		Select("query, COUNT(*) as count").
		Group("query").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *eventLogRepository) PopularFeatures(ctx context.Context, limit int) ([]*model.FeaturePopularity, error) {
	var rows []*model.FeaturePopularity
	err := r.db.WithContext(ctx).
		Order("search_count DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *eventLogRepository) ViewTrends(ctx context.Context, days int) ([]ViewTrend, error) {
	since := time.Now().AddDate(0, 0, -days)
	var rows []ViewTrend
	err := r.db.WithContext(ctx).
		Model(&model.CarView{}).
		Select("DATE(view_date) as date, COUNT(*) as count").
		Where("view_date >= ?", since).
		Group("DATE(view_date)").
		Order("date").
		Scan(&rows).Error
	return rows, err
}

func (r *eventLogRepository) MostViewed(ctx context.Context, limit int) ([]CarViewCount, error) {
	var rows []CarViewCount
	err := r.db.WithContext(ctx).
		Model(&model.CarView{}).
		Select("car_id, COUNT(*) as count").
		Group("car_id").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
