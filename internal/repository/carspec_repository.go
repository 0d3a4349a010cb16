package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/carmarket/internal/model"
)

type CarSpecRepository interface {
	// Upsert 按 car_id 幂等落地镜像行
	Upsert(ctx context.Context, spec *model.CarSpec) error
	DeleteByCarID(ctx context.Context, carID string) error
	FindByCarID(ctx context.Context, carID string) (*model.CarSpec, error)
	FindByCarIDs(ctx context.Context, carIDs []string) ([]*model.CarSpec, error)
	Count(ctx context.Context) (int64, error)
}

type carSpecRepository struct {
	db *gorm.DB
}

func NewCarSpecRepository(db *gorm.DB) CarSpecRepository { return &carSpecRepository{db: db} }

// AutoMigrateAnalytics 建立 Analytics Store 表结构，启动时调用一次。
func AutoMigrateAnalytics(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.CarSpec{},
		&model.SearchLog{},
		&model.CarView{},
		&model.CarComparison{},
		&model.FeaturePopularity{},
		&model.PriceHistory{},
	)
}

func (r *carSpecRepository) Upsert(ctx context.Context, spec *model.CarSpec) error {
	spec.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "car_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"make", "model", "year", "mileage", "price",
			"body_type", "fuel_type", "transmission",
			"engine_size", "horsepower", "torque", "fuel_economy",
			"doors", "seats", "color", "interior_color", "vin",
			"updated_at",
		}),
	}).Create(spec).Error
}

func (r *carSpecRepository) DeleteByCarID(ctx context.Context, carID string) error {
	return r.db.WithContext(ctx).Where("car_id = ?", carID).Delete(&model.CarSpec{}).Error
}

func (r *carSpecRepository) FindByCarID(ctx context.Context, carID string) (*model.CarSpec, error) {
	var spec model.CarSpec
	if err := r.db.WithContext(ctx).Where("car_id = ?", carID).First(&spec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &spec, nil
}

func (r *carSpecRepository) FindByCarIDs(ctx context.Context, carIDs []string) ([]*model.CarSpec, error) {
	if len(carIDs) == 0 {
		return nil, nil
	}
	var specs []*model.CarSpec
	err := r.db.WithContext(ctx).Where("car_id IN ?", carIDs).Find(&specs).Error
	return specs, err
}

func (r *carSpecRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.CarSpec{}).Count(&cnt).Error
	return cnt, err
}
