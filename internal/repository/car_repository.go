package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/d60-Lab/carmarket/internal/model"
)

// CarQuery 搜索条件；零值字段不参与过滤。只返回 active 车源。
type CarQuery struct {
	Query     string
	Make      string
	Category  string
	MinPrice  int
	MaxPrice  int
	MinYear   int
	MaxYear   int
	Makes     []string
	BodyTypes []string
	FuelTypes []string
}

type CarRepository interface {
	Create(ctx context.Context, car *model.CarAd) (string, error)
	FindByID(ctx context.Context, id string) (*model.CarAd, error)
	// IncrementViews 对计数字段做单字段 $inc，读路径上唯一的同步写。
	IncrementViews(ctx context.Context, id string) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.CarAd, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.CarAd, error)
	// FindByMakeModel 品牌+车型不区分大小写匹配，价格序列聚合用。
	FindByMakeModel(ctx context.Context, carMake, carModel string) ([]*model.CarAd, error)
	Search(ctx context.Context, q CarQuery) ([]*model.CarAd, error)
	Similar(ctx context.Context, car *model.CarAd, limit int) ([]*model.CarAd, error)
	Featured(ctx context.Context, limit int) ([]*model.CarAd, error)
	All(ctx context.Context) ([]*model.CarAd, error)
}

type carRepository struct {
	coll *mongo.Collection
}

func NewCarRepository(db *mongo.Database) CarRepository {
	return &carRepository{coll: db.Collection("car_ads")}
}

// EnsureCarIndexes 建立车源集合索引，启动时调用一次。
func EnsureCarIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("car_ads").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "make", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	})
	return err
}

func (r *carRepository) Create(ctx context.Context, car *model.CarAd) (string, error) {
	now := time.Now()
	car.CreatedAt = now
	car.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, car)
	if err != nil {
		return "", err
	}
	oid := res.InsertedID.(primitive.ObjectID)
	car.ID = oid
	return oid.Hex(), nil
}

func (r *carRepository) FindByID(ctx context.Context, id string) (*model.CarAd, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var car model.CarAd
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&car); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) IncrementViews(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *carRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *carRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.Update(ctx, id, map[string]interface{}{"status": status})
}

func (r *carRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *carRepository) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	cnt, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *carRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.CarAd, error) {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, nil
	}
	return r.find(ctx, bson.M{"user_id": oid}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *carRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.CarAd, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
}

func (r *carRepository) FindByMakeModel(ctx context.Context, carMake, carModel string) ([]*model.CarAd, error) {
	return r.find(ctx, bson.M{
		"make":  primitive.Regex{Pattern: carMake, Options: "i"},
		"model": primitive.Regex{Pattern: carModel, Options: "i"},
	}, options.Find())
}

func (r *carRepository) Search(ctx context.Context, q CarQuery) ([]*model.CarAd, error) {
	filter := bson.M{"status": model.CarStatusActive}
	if q.Query != "" {
		rx := primitive.Regex{Pattern: q.Query, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
			bson.M{"make": rx},
			bson.M{"model": rx},
		}
	}
	if q.Make != "" && q.Make != "all" {
		filter["make"] = q.Make
	}
	if q.Category != "" {
		filter["body_type"] = q.Category
	}
	if q.MinPrice > 0 || q.MaxPrice > 0 {
		price := bson.M{}
		if q.MinPrice > 0 {
			price["$gte"] = q.MinPrice
		}
		if q.MaxPrice > 0 {
			price["$lte"] = q.MaxPrice
		}
		filter["price"] = price
	}
	if q.MinYear > 0 || q.MaxYear > 0 {
		year := bson.M{}
		if q.MinYear > 0 {
			year["$gte"] = q.MinYear
		}
		if q.MaxYear > 0 {
			year["$lte"] = q.MaxYear
		}
		filter["year"] = year
	}
	if len(q.Makes) > 0 {
		filter["make"] = bson.M{"$in": q.Makes}
	}
	if len(q.BodyTypes) > 0 {
		filter["body_type"] = bson.M{"$in": q.BodyTypes}
	}
	if len(q.FuelTypes) > 0 {
		filter["fuel_type"] = bson.M{"$in": q.FuelTypes}
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *carRepository) Similar(ctx context.Context, car *model.CarAd, limit int) ([]*model.CarAd, error) {
	filter := bson.M{
		"_id":    bson.M{"$ne": car.ID},
		"status": model.CarStatusActive,
		"$or": bson.A{
			bson.M{"make": car.Make},
			bson.M{"price": bson.M{
				"$gte": int(float64(car.Price) * 0.8),
				"$lte": int(float64(car.Price) * 1.2),
			}},
			bson.M{"body_type": car.BodyType},
		},
	}
	return r.find(ctx, filter, options.Find().SetLimit(int64(limit)))
}

func (r *carRepository) Featured(ctx context.Context, limit int) ([]*model.CarAd, error) {
	return r.find(ctx, bson.M{"status": model.CarStatusActive},
		options.Find().SetSort(bson.D{{Key: "views", Value: -1}}).SetLimit(int64(limit)))
}

func (r *carRepository) All(ctx context.Context) ([]*model.CarAd, error) {
	return r.find(ctx, bson.M{}, options.Find())
}

func (r *carRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.CarAd, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var cars []*model.CarAd
	if err := cur.All(ctx, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}
