package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/d60-Lab/carmarket/internal/model"
)

func newFavoriteFixture(t *testing.T) (*fakeFavoriteRepo, *fakeCarRepo, FavoriteService) {
	t.Helper()
	favs := newFakeFavoriteRepo()
	cars := newFakeCarRepo()
	return favs, cars, NewFavoriteService(favs, cars)
}

func seedActiveCar(t *testing.T, cars *fakeCarRepo) string {
	t.Helper()
	id, err := cars.Create(context.Background(), &model.CarAd{
		UserID: primitive.NewObjectID(),
		Title:  "2020 Toyota Camry",
		Price:  25000,
		Status: model.CarStatusActive,
		Images: []string{"/img/camry.jpg"},
	})
	require.NoError(t, err)
	return id
}

func TestFavoriteAddIsIdempotent(t *testing.T) {
	_, cars, svc := newFavoriteFixture(t)
	ctx := context.Background()
	carID := seedActiveCar(t, cars)
	userID := primitive.NewObjectID().Hex()

	added, err := svc.Add(ctx, userID, carID)
	require.NoError(t, err)
	assert.True(t, added)

	// 重复收藏是无操作，不报错
	added, err = svc.Add(ctx, userID, carID)
	require.NoError(t, err)
	assert.False(t, added)

	fav, err := svc.IsFavorite(ctx, userID, carID)
	require.NoError(t, err)
	assert.True(t, fav)
}

func TestFavoriteAddUnknownCar(t *testing.T) {
	_, _, svc := newFavoriteFixture(t)
	_, err := svc.Add(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFavoriteRemove(t *testing.T) {
	_, cars, svc := newFavoriteFixture(t)
	ctx := context.Background()
	carID := seedActiveCar(t, cars)
	userID := primitive.NewObjectID().Hex()

	_, err := svc.Add(ctx, userID, carID)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, userID, carID))

	fav, err := svc.IsFavorite(ctx, userID, carID)
	require.NoError(t, err)
	assert.False(t, fav)

	assert.ErrorIs(t, svc.Remove(ctx, userID, carID), ErrNotFavorite)
}

func TestFavoriteListSkipsDanglingRefs(t *testing.T) {
	_, cars, svc := newFavoriteFixture(t)
	ctx := context.Background()
	kept := seedActiveCar(t, cars)
	doomed := seedActiveCar(t, cars)
	userID := primitive.NewObjectID().Hex()

	_, err := svc.Add(ctx, userID, kept)
	require.NoError(t, err)
	_, err = svc.Add(ctx, userID, doomed)
	require.NoError(t, err)

	// 车删了、级联还没跑到：列表直接跳过悬空引用
	require.NoError(t, cars.Delete(ctx, doomed))

	list, err := svc.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept, list[0].ID)
	assert.Equal(t, "/img/camry.jpg", list[0].Image)
}
