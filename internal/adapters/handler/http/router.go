package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/comitanigiacomo/sober-engine/internal/adapters/handler/http/middleware"
)

type RouterDependencies struct {
	AuthHandler         *AuthHandler
	ProfileHandler      *ProfileHandler
	MilestoneHandler    *MilestoneHandler
	PodHandler          *PodHandler
	JournalHandler      *JournalHandler
	NotificationHandler *NotificationHandler
	SubscriptionHandler *SubscriptionHandler
	TokenValidator      middleware.TokenValidator
	DB                  *sqlx.DB
	Redis               *redis.Client
	LocalLimiter        *middleware.LocalRateLimiter
	RateLimit           int
	RateWindow          time.Duration
	MetricsUser         string
	MetricsPass         string
	StartTime           time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.MetricsMiddleware())

	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	switch {
	case deps.Redis != nil:
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateWindow))
	case deps.LocalLimiter != nil:
		router.Use(deps.LocalLimiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "connected"
		if deps.DB == nil || deps.DB.PingContext(c.Request.Context()) != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if deps.Redis.Ping(c.Request.Context()).Err() != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := http.StatusOK
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	router.GET("/metrics", middleware.BasicAuth(deps.MetricsUser, deps.MetricsPass), gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1)
	if deps.SubscriptionHandler != nil {
		deps.SubscriptionHandler.RegisterWebhook(apiV1)
	}

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenValidator))
	{
		deps.ProfileHandler.RegisterRoutes(protected)
		deps.MilestoneHandler.RegisterRoutes(protected)
		deps.PodHandler.RegisterRoutes(protected)
		deps.JournalHandler.RegisterRoutes(protected)
		deps.NotificationHandler.RegisterRoutes(protected)
		if deps.SubscriptionHandler != nil {
			deps.SubscriptionHandler.RegisterRoutes(protected)
		}
	}

	return router
}
