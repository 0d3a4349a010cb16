package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 进程级配置，main 中加载一次后注入各组件。
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Async     AsyncConfig     `mapstructure:"async"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Addr      string  `mapstructure:"addr"`
	Mode      string  `mapstructure:"mode"` // debug / release
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type CacheConfig struct {
	CarDetailsTTL    time.Duration `mapstructure:"car_details_ttl"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
	RecentSearchTTL  time.Duration `mapstructure:"recent_search_ttl"`
	PriceHistoryTTL  time.Duration `mapstructure:"price_history_ttl"`
}

type AsyncConfig struct {
	QueueSize int `mapstructure:"queue_size"`
	Workers   int `mapstructure:"workers"`
}

// AdminConfig 管理端邮箱名单；命中才能访问分析聚合与全量同步接口。
type AdminConfig struct {
	Emails []string `mapstructure:"emails"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// Load 读取 yaml 配置，环境变量 CARMARKET_* 可覆盖同名项。
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("CARMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.rate_burst", 200)
	v.SetDefault("log.level", "info")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "carmarket")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("postgres.dsn", "host=localhost user=postgres password=postgres dbname=carmarket port=5432 sslmode=disable")
	v.SetDefault("cache.car_details_ttl", 24*time.Hour)
	v.SetDefault("cache.session_ttl", 7*24*time.Hour)
	v.SetDefault("cache.recent_search_ttl", time.Hour)
	v.SetDefault("cache.price_history_ttl", 24*time.Hour)
	v.SetDefault("async.queue_size", 10000)
	v.SetDefault("async.workers", 4)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时仅用默认值 + 环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !strings.Contains(err.Error(), "no such file") {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
