package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/carmarket/internal/api"
	"github.com/d60-Lab/carmarket/internal/api/handler"
	"github.com/d60-Lab/carmarket/internal/cache"
	"github.com/d60-Lab/carmarket/internal/config"
	"github.com/d60-Lab/carmarket/internal/repository"
	"github.com/d60-Lab/carmarket/internal/service"
	"github.com/d60-Lab/carmarket/internal/telemetry"
	"github.com/d60-Lab/carmarket/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode, cfg.Log.Level); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Error("telemetry init failed", zap.Error(err))
		os.Exit(1)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		os.Exit(1)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		logger.Error("mongo ping failed", zap.Error(err))
		os.Exit(1)
	}
	mdb := mongoClient.Database(cfg.Mongo.Database)

	for _, ensure := range []func(context.Context, *mongo.Database) error{
		repository.EnsureCarIndexes,
		repository.EnsureUserIndexes,
		repository.EnsureFavoriteIndexes,
	} {
		if err := ensure(ctx, mdb); err != nil {
			logger.Error("mongo index setup failed", zap.Error(err))
			os.Exit(1)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed", zap.Error(err))
		os.Exit(1)
	}

	gdb, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Error("postgres connect failed", zap.Error(err))
		os.Exit(1)
	}
	if err := repository.AutoMigrateAnalytics(gdb); err != nil {
		logger.Error("postgres migrate failed", zap.Error(err))
		os.Exit(1)
	}

	carRepo := repository.NewCarRepository(mdb)
	userRepo := repository.NewUserRepository(mdb)
	favRepo := repository.NewFavoriteRepository(mdb)
	specRepo := repository.NewCarSpecRepository(gdb)
	eventRepo := repository.NewEventLogRepository(gdb)
	priceRepo := repository.NewPriceHistoryRepository(gdb)

	cacheStore := cache.New(rdb, cfg.Cache)
	sessions := service.NewSessionStore(rdb, cfg.Cache.SessionTTL)

	runner := service.NewAsyncRunner(cfg.Async.QueueSize)
	stopRunner := runner.Start(cfg.Async.Workers)

	mirror := service.NewMirrorService(carRepo, specRepo)
	authSvc := service.NewAuthService(userRepo, sessions)
	listingSvc := service.NewListingService(carRepo, userRepo, favRepo, eventRepo, cacheStore, mirror, runner)
	favoriteSvc := service.NewFavoriteService(favRepo, carRepo)
	searchSvc := service.NewSearchService(carRepo, eventRepo, cacheStore, runner)
	analyticsSvc := service.NewAnalyticsService(specRepo, eventRepo, priceRepo, carRepo, cacheStore, runner)

	h := handler.New(authSvc, listingSvc, favoriteSvc, searchSvc, analyticsSvc, mirror, runner)
	router := api.NewRouter(cfg, h)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := stopRunner(shutdownCtx); err != nil {
		logger.Warn("async runner drain", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Warn("mongo disconnect", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("redis close", zap.Error(err))
	}
	logger.Info("bye")
}
