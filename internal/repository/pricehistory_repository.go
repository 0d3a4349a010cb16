package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/carmarket/internal/model"
)

// PriceHistoryRepository 价格序列持久层（Analytics Store）
type PriceHistoryRepository interface {
	Insert(ctx context.Context, rows []*model.PriceHistory) error
	// FindSeries 按日期升序返回某品牌+车型的全部序列行
	FindSeries(ctx context.Context, carMake, carModel string) ([]*model.PriceHistory, error)
}

type priceHistoryRepository struct {
	db *gorm.DB
}

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

func (r *priceHistoryRepository) Insert(ctx context.Context, rows []*model.PriceHistory) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

func (r *priceHistoryRepository) FindSeries(ctx context.Context, carMake, carModel string) ([]*model.PriceHistory, error) {
	var rows []*model.PriceHistory
	err := r.db.WithContext(ctx).
		Where("make = ? AND model = ?", carMake, carModel).
		Order("date").
		Find(&rows).Error
	return rows, err
}
