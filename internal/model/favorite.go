package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite 收藏关系；(user_id, car_ad_id) 复合唯一索引保证一人一车最多一条。
type Favorite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	CarAdID   primitive.ObjectID `bson:"car_ad_id"`
	CreatedAt time.Time          `bson:"created_at"`
}
