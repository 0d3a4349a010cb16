package model

import "time"

// CarSpec 车源规格镜像行（Analytics Store），按 car_id 一车一行。
// 由同步管线尽力维护，不保证与 Primary Store 实时一致。
type CarSpec struct {
	ID            uint      `gorm:"primaryKey"`
	CarID         string    `gorm:"type:varchar(36);uniqueIndex:ux_car_specs_car;not null"`
	Make          string    `gorm:"type:varchar(64);not null;index:idx_car_specs_make"`
	Model         string    `gorm:"type:varchar(64);not null"`
	Year          int       `gorm:"not null"`
	Mileage       int       `gorm:"not null"`
	Price         int       `gorm:"not null;index:idx_car_specs_price"`
	BodyType      string    `gorm:"type:varchar(32)"`
	FuelType      string    `gorm:"type:varchar(32)"`
	Transmission  string    `gorm:"type:varchar(32)"`
	EngineSize    *float64
	Horsepower    *int
	Torque        *int
	FuelEconomy   *float64
	Doors         *int
	Seats         *int
	Color         string `gorm:"type:varchar(64)"`
	InteriorColor string `gorm:"type:varchar(64)"`
	VIN           string `gorm:"column:vin;type:varchar(32)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (CarSpec) TableName() string { return "car_specs" }

// PriceHistory 按品牌+车型的月度价格序列，由 Primary Store 实价聚合生成。
type PriceHistory struct {
	ID           uint      `gorm:"primaryKey"`
	Make         string    `gorm:"type:varchar(64);not null;index:idx_price_history_series"`
	Model        string    `gorm:"type:varchar(64);not null;index:idx_price_history_series"`
	Date         time.Time `gorm:"not null"`
	AveragePrice int       `gorm:"not null"`
	MinPrice     int       `gorm:"not null"`
	MaxPrice     int       `gorm:"not null"`
	SampleSize   int       `gorm:"not null"`
}

func (PriceHistory) TableName() string { return "price_history" }

// SearchLog 搜索日志，只追加
type SearchLog struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      string    `gorm:"type:varchar(36);index:idx_search_logs_user"`
	Query       string    `gorm:"type:text;not null"`
	Filters     string    `gorm:"type:text"` // JSON 序列化的过滤条件
	ResultCount int
	Timestamp   time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP"`
}

func (SearchLog) TableName() string { return "search_logs" }

// CarView 浏览事件，只追加
type CarView struct {
	ID         uint      `gorm:"primaryKey"`
	CarID      string    `gorm:"type:varchar(36);index:idx_car_views_car;not null"`
	UserID     string    `gorm:"type:varchar(36)"`
	SessionID  string    `gorm:"type:varchar(64)"`
	DeviceType string    `gorm:"type:varchar(32)"`
	Referrer   string    `gorm:"type:varchar(255)"`
	ViewDate   time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP"`
}

func (CarView) TableName() string { return "car_views" }

// CarComparison 对比事件，只追加；CarIDs 为 JSON 数组文本。
type CarComparison struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(36)"`
	CarIDs    string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP"`
}

func (CarComparison) TableName() string { return "car_comparisons" }

// FeaturePopularity 搜索过滤条件的命中计数
type FeaturePopularity struct {
	ID          uint      `gorm:"primaryKey"`
	Feature     string    `gorm:"type:varchar(64);uniqueIndex:ux_feature_popularity;not null"`
	SearchCount int       `gorm:"not null;default:0"`
	LastUpdated time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FeaturePopularity) TableName() string { return "feature_popularity" }
