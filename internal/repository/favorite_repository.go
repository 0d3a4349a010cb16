package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/d60-Lab/carmarket/internal/model"
)

type FavoriteRepository interface {
	Create(ctx context.Context, userID, carID string) error
	Delete(ctx context.Context, userID, carID string) error
	Exists(ctx context.Context, userID, carID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Favorite, error)
	// DeleteByCar 车源删除时的级联清理，返回删除行数。
	DeleteByCar(ctx context.Context, carID string) (int64, error)
}

type favoriteRepository struct {
	coll *mongo.Collection
}

func NewFavoriteRepository(db *mongo.Database) FavoriteRepository {
	return &favoriteRepository{coll: db.Collection("favorites")}
}

// EnsureFavoriteIndexes (user_id, car_ad_id) 复合唯一索引
func EnsureFavoriteIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("favorites").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "car_ad_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *favoriteRepository) Create(ctx context.Context, userID, carID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}
	cid, err := primitive.ObjectIDFromHex(carID)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.coll.InsertOne(ctx, &model.Favorite{UserID: uid, CarAdID: cid, CreatedAt: time.Now()})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, carID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}
	cid, err := primitive.ObjectIDFromHex(carID)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"user_id": uid, "car_ad_id": cid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, carID string) (bool, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, nil
	}
	cid, err := primitive.ObjectIDFromHex(carID)
	if err != nil {
		return false, nil
	}
	cnt, err := r.coll.CountDocuments(ctx, bson.M{"user_id": uid, "car_ad_id": cid}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID string) ([]*model.Favorite, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"user_id": uid}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var favs []*model.Favorite
	if err := cur.All(ctx, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

func (r *favoriteRepository) DeleteByCar(ctx context.Context, carID string) (int64, error) {
	cid, err := primitive.ObjectIDFromHex(carID)
	if err != nil {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"car_ad_id": cid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
