package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/carmarket/internal/cache"
	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/internal/repository"
	"github.com/d60-Lab/carmarket/pkg/logger"
)

// ViewMeta 一次浏览请求的埋点上下文
type ViewMeta struct {
	UserID     string
	SessionID  string
	DeviceType string
	Referrer   string
}

// CreateListingInput 发布车源的必填 + 可选字段
type CreateListingInput struct {
	Title         string
	Make          string
	Model         string
	Year          int
	Price         int
	Mileage       int
	Description   string
	BodyType      string
	FuelType      string
	Transmission  string
	Features      []string
	Location      string
	Images        []string
	ExteriorColor string
	InteriorColor string
	VIN           string
	Doors         string
	Condition     string
}

// UpdateListingInput 部分更新：nil 字段不动
type UpdateListingInput struct {
	Title         *string
	Make          *string
	Model         *string
	Year          *int
	Price         *int
	Mileage       *int
	Description   *string
	BodyType      *string
	FuelType      *string
	Transmission  *string
	Features      *[]string
	Location      *string
	ExteriorColor *string
	InteriorColor *string
	VIN           *string
	Doors         *string
	Condition     *string
}

// ListingService 车源同步管线：读穿缓存 + 写路径失效 + 异步镜像。
type ListingService interface {
	// Get 读路径：缓存命中直接返回；未命中回源、同步累加浏览计数、
	// 组装详情写回缓存。返回值第二项表示是否来自缓存。
	Get(ctx context.Context, id string, meta ViewMeta) (*model.CarDetails, bool, error)
	Create(ctx context.Context, ownerID string, input CreateListingInput) (string, error)
	Update(ctx context.Context, id, callerID string, input UpdateListingInput) error
	Delete(ctx context.Context, id, callerID string) error
	MostViewed(ctx context.Context, limit int) []string
	ByOwner(ctx context.Context, ownerID string) ([]model.CarSummary, error)
}

type listingService struct {
	cars      repository.CarRepository
	users     repository.UserRepository
	favorites repository.FavoriteRepository
	events    repository.EventLogRepository
	cache     *cache.Store
	mirror    *MirrorService
	runner    *AsyncRunner
}

func NewListingService(
	cars repository.CarRepository,
	users repository.UserRepository,
	favorites repository.FavoriteRepository,
	events repository.EventLogRepository,
	cacheStore *cache.Store,
	mirror *MirrorService,
	runner *AsyncRunner,
) ListingService {
	return &listingService{
		cars:      cars,
		users:     users,
		favorites: favorites,
		events:    events,
		cache:     cacheStore,
		mirror:    mirror,
		runner:    runner,
	}
}

func (s *listingService) Get(ctx context.Context, id string, meta ViewMeta) (*model.CarDetails, bool, error) {
	if details := s.cache.GetCarDetails(ctx, id); details != nil {
		// 缓存里的 views 冻结在入缓存时的值，直到失效或过期
		s.trackView(id, meta)
		return details, true, nil
	}

	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	// 读路径上唯一的同步写；失败时吞掉，返回增加前读到的数据
	if err := s.cars.IncrementViews(ctx, id); err != nil {
		logger.Warn("view counter persist failed", zap.String("car_id", id), zap.Error(err))
	} else {
		car.Views++
	}

	details := s.assemble(ctx, car)
	s.cache.SetCarDetails(ctx, id, details)

	s.trackView(id, meta)
	s.runner.Enqueue("mirror car spec", func(ctx context.Context) error {
		return s.mirror.SyncCar(ctx, id)
	})

	return details, false, nil
}

// assemble 拼装对外详情：卖家快照（属主缺失用占位值）+ 规格兜底合并。
func (s *listingService) assemble(ctx context.Context, car *model.CarAd) *model.CarDetails {
	seller := model.SellerSnapshot{
		Name:        "Unknown Seller",
		Phone:       "N/A",
		Email:       "N/A",
		Rating:      0,
		MemberSince: "N/A",
	}
	if owner, err := s.users.FindByID(ctx, car.UserID.Hex()); err == nil {
		seller = model.SellerSnapshot{
			Name:        owner.FullName,
			Phone:       owner.PhoneNumber,
			Email:       owner.Email,
			Rating:      car.Seller.Rating,
			MemberSince: owner.MemberSince,
		}
		if seller.Rating == 0 {
			seller.Rating = 5.0
		}
	}

	specs := model.DefaultSpecifications()
	for k, v := range car.Specifications {
		if v != "" {
			specs[k] = v
		}
	}
	if specs["transmission"] == "Not specified" {
		specs["transmission"] = car.Transmission
	}

	return &model.CarDetails{
		ID:             car.ID.Hex(),
		UserID:         car.UserID.Hex(),
		Title:          car.Title,
		Make:           car.Make,
		Model:          car.Model,
		Year:           car.Year,
		Price:          car.Price,
		Mileage:        car.Mileage,
		Description:    car.Description,
		BodyType:       car.BodyType,
		FuelType:       car.FuelType,
		Transmission:   car.Transmission,
		Features:       car.Features,
		Location:       car.Location,
		Images:         car.Images,
		Status:         car.Status,
		Views:          car.Views,
		Specifications: specs,
		Seller:         seller,
		Coordinates:    car.Coordinates,
		CreatedAt:      car.CreatedAt,
		UpdatedAt:      car.UpdatedAt,
	}
}

// trackView 异步：Redis 热度自增 + Analytics 浏览日志，互不耦合。
func (s *listingService) trackView(id string, meta ViewMeta) {
	s.runner.Enqueue("increment popularity", func(ctx context.Context) error {
		s.cache.IncrementCarView(ctx, id)
		return nil
	})
	s.runner.Enqueue("log car view", func(ctx context.Context) error {
		return s.events.LogView(ctx, &model.CarView{
			CarID:      id,
			UserID:     meta.UserID,
			SessionID:  meta.SessionID,
			DeviceType: meta.DeviceType,
			Referrer:   meta.Referrer,
			ViewDate:   time.Now(),
		})
	})
}

func (s *listingService) Create(ctx context.Context, ownerID string, input CreateListingInput) (string, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	specs := model.DefaultSpecifications()
	specs["transmission"] = input.Transmission
	for k, v := range map[string]string{
		"exteriorColor": input.ExteriorColor,
		"interiorColor": input.InteriorColor,
		"vin":           input.VIN,
		"doors":         input.Doors,
		"condition":     input.Condition,
	} {
		if v != "" {
			specs[k] = v
		}
	}

	images := input.Images
	if len(images) == 0 {
		images = []string{"/placeholder.svg?height=400&width=600"}
	}

	car := &model.CarAd{
		UserID:         owner.ID,
		Title:          input.Title,
		Make:           input.Make,
		Model:          input.Model,
		Year:           input.Year,
		Price:          input.Price,
		Mileage:        input.Mileage,
		Description:    input.Description,
		BodyType:       input.BodyType,
		FuelType:       input.FuelType,
		Transmission:   input.Transmission,
		Features:       input.Features,
		Location:       input.Location,
		Images:         images,
		Status:         model.CarStatusActive,
		Views:          0,
		Specifications: specs,
		Seller: model.SellerSnapshot{
			Name:        owner.FullName,
			Phone:       owner.PhoneNumber,
			Email:       owner.Email,
			Rating:      5.0,
			MemberSince: owner.MemberSince,
		},
		Coordinates: model.Coordinates{Lat: 47.6062, Lng: -122.3321},
	}
	if car.Features == nil {
		car.Features = []string{}
	}

	// 创建不写缓存不写镜像，首次读取时惰性填充
	return s.cars.Create(ctx, car)
}

func (s *listingService) Update(ctx context.Context, id, callerID string, input UpdateListingInput) error {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if car.UserID.Hex() != callerID {
		return ErrForbidden
	}

	fields := map[string]interface{}{}
	setStr := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	setInt := func(key string, v *int) {
		if v != nil {
			fields[key] = *v
		}
	}
	setStr("title", input.Title)
	setStr("make", input.Make)
	setStr("model", input.Model)
	setInt("year", input.Year)
	setInt("price", input.Price)
	setInt("mileage", input.Mileage)
	setStr("description", input.Description)
	setStr("body_type", input.BodyType)
	setStr("fuel_type", input.FuelType)
	setStr("location", input.Location)
	if input.Transmission != nil {
		fields["transmission"] = *input.Transmission
		fields["specifications.transmission"] = *input.Transmission
	}
	if input.Features != nil {
		fields["features"] = *input.Features
	}
	setStr("specifications.exteriorColor", input.ExteriorColor)
	setStr("specifications.interiorColor", input.InteriorColor)
	setStr("specifications.vin", input.VIN)
	setStr("specifications.doors", input.Doors)
	setStr("specifications.condition", input.Condition)

	if len(fields) > 0 {
		if err := s.cars.Update(ctx, id, fields); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
	}

	// 只失效不回填，下次读取重新组装
	s.cache.InvalidateCarDetails(ctx, id)
	s.runner.Enqueue("mirror car spec", func(ctx context.Context) error {
		return s.mirror.SyncCar(ctx, id)
	})
	return nil
}

func (s *listingService) Delete(ctx context.Context, id, callerID string) error {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if car.UserID.Hex() != callerID {
		return ErrForbidden
	}

	if err := s.cars.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.cache.InvalidateCarDetails(ctx, id)
	s.cache.RemoveFromPopular(ctx, id)
	s.runner.Enqueue("delete car spec mirror", func(ctx context.Context) error {
		return s.mirror.DeleteCar(ctx, id)
	})

	// 级联清理收藏；与主删除无事务耦合，失败只记录
	if n, err := s.favorites.DeleteByCar(ctx, id); err != nil {
		logger.Warn("favorite cascade failed", zap.String("car_id", id), zap.Error(err))
	} else if n > 0 {
		logger.Info("favorites removed with car", zap.String("car_id", id), zap.Int64("count", n))
	}
	return nil
}

func (s *listingService) MostViewed(ctx context.Context, limit int) []string {
	return s.cache.MostViewed(ctx, limit)
}

func (s *listingService) ByOwner(ctx context.Context, ownerID string) ([]model.CarSummary, error) {
	cars, err := s.cars.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return summarize(cars, false), nil
}

// summarize 列表页摘要；首图缺失用占位图。
func summarize(cars []*model.CarAd, featured bool) []model.CarSummary {
	out := make([]model.CarSummary, 0, len(cars))
	for _, car := range cars {
		image := "/placeholder.svg?height=200&width=300"
		if len(car.Images) > 0 {
			image = car.Images[0]
		}
		out = append(out, model.CarSummary{
			ID:       car.ID.Hex(),
			Title:    car.Title,
			Price:    car.Price,
			Location: car.Location,
			Year:     car.Year,
			Mileage:  car.Mileage,
			Image:    image,
			Featured: featured,
		})
	}
	return out
}
