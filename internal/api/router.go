package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/carmarket/internal/api/handler"
	"github.com/d60-Lab/carmarket/internal/config"
)

// NewRouter 组装路由与中间件
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	registerValidations()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Telemetry.Enabled {
		r.Use(otelgin.Middleware("carmarket"))
	}

	r.GET("/healthz", h.Health)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", h.Signup)
			auth.POST("/login", h.Login)
			auth.POST("/logout", h.Logout)
			auth.GET("/session", h.GetSession)
		}

		cars := v1.Group("/cars")
		{
			cars.POST("", h.CreateCar)
			cars.GET("/search", h.SearchCars)
			cars.GET("/featured", h.FeaturedCars)
			cars.GET("/popular", h.PopularCars)
			cars.GET("/mine", h.MyCars)
			cars.GET("/searches/recent", h.RecentSearches)
			cars.GET("/:id", h.GetCar)
			cars.PUT("/:id", h.UpdateCar)
			cars.DELETE("/:id", h.DeleteCar)
			cars.GET("/:id/similar", h.SimilarCars)
		}

		favorites := v1.Group("/favorites")
		{
			favorites.GET("", h.ListFavorites)
			favorites.POST("", h.AddFavorite)
			favorites.GET("/:carId", h.CheckFavorite)
			favorites.DELETE("/:carId", h.RemoveFavorite)
		}

		v1.POST("/compare", h.CompareCars)

		user := v1.Group("/user")
		{
			user.GET("/profile", h.GetProfile)
			user.PUT("/profile", h.UpdateProfile)
		}

		// 价格走势是面向买家的页面数据，不进管理员组
		v1.GET("/analytics/price-history", h.PriceHistory)

		analytics := v1.Group("/analytics", h.RequireAdmin(cfg.Admin.Emails))
		{
			analytics.GET("/popular-queries", h.PopularQueries)
			analytics.GET("/popular-features", h.PopularFeatures)
			analytics.GET("/view-trends", h.ViewTrends)
			analytics.GET("/most-viewed", h.MostViewedFromLogs)
			analytics.POST("/sync", h.SyncAll)
		}
	}

	return r
}
