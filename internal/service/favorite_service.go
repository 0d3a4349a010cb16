package service

import (
	"context"
	"errors"

	"github.com/d60-Lab/carmarket/internal/model"
	"github.com/d60-Lab/carmarket/internal/repository"
)

// FavoriteService 收藏管理
type FavoriteService interface {
	// Add 收藏一辆车；重复收藏视为无操作，added 返回 false。
	Add(ctx context.Context, userID, carID string) (added bool, err error)
	Remove(ctx context.Context, userID, carID string) error
	IsFavorite(ctx context.Context, userID, carID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.CarSummary, error)
}

type favoriteService struct {
	favorites repository.FavoriteRepository
	cars      repository.CarRepository
}

func NewFavoriteService(favorites repository.FavoriteRepository, cars repository.CarRepository) FavoriteService {
	return &favoriteService{favorites: favorites, cars: cars}
}

func (s *favoriteService) Add(ctx context.Context, userID, carID string) (bool, error) {
	exists, err := s.cars.Exists(ctx, carID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	if err := s.favorites.Create(ctx, userID, carID); err != nil {
		// 唯一索引兜底并发下的重复收藏
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}
	return true, nil
}

func (s *favoriteService) Remove(ctx context.Context, userID, carID string) error {
	if err := s.favorites.Delete(ctx, userID, carID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFavorite
		}
		return err
	}
	return nil
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID, carID string) (bool, error) {
	return s.favorites.Exists(ctx, userID, carID)
}

func (s *favoriteService) ListByUser(ctx context.Context, userID string) ([]model.CarSummary, error) {
	favs, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.CarAdID.Hex())
	}
	// 悬空引用（车已删、级联未及时）直接跳过
	cars, err := s.cars.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return summarize(cars, false), nil
}
