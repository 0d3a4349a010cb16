package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 车源状态：仅 active 对搜索/浏览可见
const (
	CarStatusPending  = "pending"
	CarStatusActive   = "active"
	CarStatusInactive = "inactive"
)

// CarAd 车源广告（Primary Store 权威记录）
type CarAd struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id"`
	Title          string             `bson:"title"`
	Make           string             `bson:"make"`
	Model          string             `bson:"model"`
	Year           int                `bson:"year"`
	Price          int                `bson:"price"`
	Mileage        int                `bson:"mileage"`
	Description    string             `bson:"description"`
	BodyType       string             `bson:"body_type"`
	FuelType       string             `bson:"fuel_type"`
	Transmission   string             `bson:"transmission"`
	Features       []string           `bson:"features"`
	Location       string             `bson:"location"`
	Images         []string           `bson:"images"`
	Status         string             `bson:"status"`
	Views          int64              `bson:"views"`
	Specifications map[string]string  `bson:"specifications"`
	Seller         SellerSnapshot     `bson:"seller"`
	Coordinates    Coordinates        `bson:"coordinates"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// SellerSnapshot 卖家联系方式快照，发布时反规范化写入，不随 User 更新。
type SellerSnapshot struct {
	Name        string  `bson:"name" json:"name"`
	Phone       string  `bson:"phone" json:"phone"`
	Email       string  `bson:"email" json:"email"`
	Rating      float64 `bson:"rating" json:"rating"`
	MemberSince string  `bson:"memberSince" json:"memberSince"`
}

type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// DefaultSpecifications 规格字段的兜底键值；组装详情时与存储值合并。
func DefaultSpecifications() map[string]string {
	return map[string]string{
		"engine":        "Not specified",
		"transmission":  "Not specified",
		"drivetrain":    "Not specified",
		"fuelEconomy":   "Not specified",
		"exteriorColor": "Not specified",
		"interiorColor": "Not specified",
		"vin":           "Not specified",
		"doors":         "Not specified",
		"condition":     "Not specified",
	}
}

// CarDetails 对外/入缓存的完整格式化车源详情
type CarDetails struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId"`
	Title          string            `json:"title"`
	Make           string            `json:"make"`
	Model          string            `json:"model"`
	Year           int               `json:"year"`
	Price          int               `json:"price"`
	Mileage        int               `json:"mileage"`
	Description    string            `json:"description"`
	BodyType       string            `json:"bodyType"`
	FuelType       string            `json:"fuelType"`
	Transmission   string            `json:"transmission"`
	Features       []string          `json:"features"`
	Location       string            `json:"location"`
	Images         []string          `json:"images"`
	Status         string            `json:"status"`
	Views          int64             `json:"views"`
	Specifications map[string]string `json:"specifications"`
	Seller         SellerSnapshot    `json:"seller"`
	Coordinates    Coordinates       `json:"coordinates"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// CarSummary 列表页摘要（搜索 / 收藏 / 同类推荐）
type CarSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int    `json:"price"`
	Location string `json:"location"`
	Year     int    `json:"year"`
	Mileage  int    `json:"mileage"`
	Image    string `json:"image"`
	Featured bool   `json:"featured"`
}
