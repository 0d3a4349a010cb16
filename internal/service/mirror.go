package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/internal/repository"
	"github.com/d60-Lab/carmarket/pkg/logger"
)

// MirrorService 把 Primary Store 的车源子集单向镜像到 Analytics Store。
// 尽力而为：失败记录后丢弃，没有重试。
type MirrorService struct {
	cars  repository.CarRepository
	specs repository.CarSpecRepository
}

func NewMirrorService(cars repository.CarRepository, specs repository.CarSpecRepository) *MirrorService {
	return &MirrorService{cars: cars, specs: specs}
}

// SyncCar 按 id 读取车源并 upsert 镜像行；车源已不存在时静默跳过。
func (m *MirrorService) SyncCar(ctx context.Context, carID string) error {
	car, err := m.cars.FindByID(ctx, carID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("mirror skipped, car gone", zap.String("car_id", carID))
			return nil
		}
		return err
	}
	return m.specs.Upsert(ctx, specFromCar(car))
}

// DeleteCar 删除镜像行
func (m *MirrorService) DeleteCar(ctx context.Context, carID string) error {
	return m.specs.DeleteByCarID(ctx, carID)
}

// SyncResult 全量同步统计
type SyncResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SyncAll 顺序遍历全部车源逐条 upsert；只计数，不重试失败项。
func (m *MirrorService) SyncAll(ctx context.Context) (SyncResult, error) {
	cars, err := m.cars.All(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	var res SyncResult
	for _, car := range cars {
		if err := m.specs.Upsert(ctx, specFromCar(car)); err != nil {
			res.Failed++
			logger.Warn("mirror upsert failed",
				zap.String("car_id", car.ID.Hex()), zap.Error(err))
			continue
		}
		res.Success++
	}
	logger.Info("full mirror sync done",
		zap.Int("success", res.Success), zap.Int("failed", res.Failed))
	return res, nil
}

// specFromCar 提取镜像字段；规格 map 里的数值字段尽量解析，解析不了留空。
func specFromCar(car *model.CarAd) *model.CarSpec {
	spec := &model.CarSpec{
		CarID:        car.ID.Hex(),
		Make:         car.Make,
		Model:        car.Model,
		Year:         car.Year,
		Mileage:      car.Mileage,
		Price:        car.Price,
		BodyType:     car.BodyType,
		FuelType:     car.FuelType,
		Transmission: car.Transmission,
	}
	if car.Specifications != nil {
		spec.EngineSize = parseFloat(car.Specifications["engineSize"])
		spec.Horsepower = parseInt(car.Specifications["horsepower"])
		spec.Torque = parseInt(car.Specifications["torque"])
		spec.FuelEconomy = parseFloat(car.Specifications["fuelEconomy"])
		spec.Doors = parseInt(car.Specifications["doors"])
		spec.Seats = parseInt(car.Specifications["seats"])
		spec.Color = specValue(car.Specifications, "exteriorColor")
		spec.InteriorColor = specValue(car.Specifications, "interiorColor")
		spec.VIN = specValue(car.Specifications, "vin")
	}
	return spec
}

func specValue(specs map[string]string, key string) string {
	v := specs[key]
	if v == "Not specified" {
		return ""
	}
	return v
}

func parseInt(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
