package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	_ "github.com/comitanigiacomo/sober-engine/docs"
	"github.com/comitanigiacomo/sober-engine/internal/adapters/cache"
	"github.com/comitanigiacomo/sober-engine/internal/adapters/email"
	adapterHTTP "github.com/comitanigiacomo/sober-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/sober-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/sober-engine/internal/adapters/payment"
	"github.com/comitanigiacomo/sober-engine/internal/adapters/push"
	"github.com/comitanigiacomo/sober-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/sober-engine/internal/config"
	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/comitanigiacomo/sober-engine/internal/core/services"
	"github.com/comitanigiacomo/sober-engine/internal/core/workers"
	"github.com/comitanigiacomo/sober-engine/internal/db"
	"github.com/comitanigiacomo/sober-engine/internal/logger"
)

// @title Sober Engine API
// @version 1.0
// @description Milestone progression, savings and community backend for the sobriety app.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	startTime := time.Now()

	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer logger.Flush()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	slog.Info("connecting to database", "driver", cfg.DBDriver)
	conn, err := db.Init(cfg.DBDriver, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close(conn)

	// `api migrate-down` rolls back the latest migration and exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := db.MigrateDown(conn.DB, cfg.DBDriver); err != nil {
			slog.Error("rollback failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(conn.DB, cfg.DBDriver); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = cache.NewRedisClient(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			slog.Warn("redis unavailable, continuing without cache", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, cfg, conn, rdb, startTime)

	a.milestoneWorker.Start(ctx)
	if err := a.reminders.Start(ctx); err != nil {
		slog.Error("reminder scheduler failed to start", "error", err)
	}
	if a.localLimiter != nil {
		go sweepVisitors(ctx, a.localLimiter, time.Minute)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("sober engine listening", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("stop signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	if err := a.reminders.Shutdown(); err != nil {
		slog.Warn("reminder scheduler shutdown", "error", err)
	}

	slog.Info("server stopped gracefully")
}

type app struct {
	router          *gin.Engine
	milestoneWorker *workers.MilestoneWorker
	reminders       *workers.ReminderScheduler
	localLimiter    *middleware.LocalRateLimiter
}

// newApp wires repositories, services and handlers. Redis, push and
// payments are optional and degrade to reduced functionality.
func newApp(ctx context.Context, cfg *config.Config, conn *sqlx.DB, rdb *redis.Client, startTime time.Time) *app {
	var milestoneRepo domain.MilestoneRepository = repository.NewPostgresMilestoneRepository(conn)
	var revocations services.RevocationStore
	if rdb != nil {
		milestoneRepo = repository.NewCachedMilestoneRepository(milestoneRepo, rdb)
		revocations = cache.NewRedisRevocationStore(rdb)
	}

	trackerRepo := repository.NewPostgresTrackerRepository(conn)
	userRepo := repository.NewPostgresUserRepository(conn)

	var pushProvider domain.PushProvider
	if fcm, err := push.NewFCMProvider(ctx, cfg.FCMCredentialsFile); err != nil {
		slog.Warn("push notifications disabled", "error", err)
	} else {
		pushProvider = fcm
	}

	notificationService := services.NewNotificationService(repository.NewPostgresNotificationRepository(conn), pushProvider)
	milestoneWorker := workers.NewMilestoneWorker(notificationService)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, userRepo).
		WithRefresh(cfg.RefreshTokenTTL, revocations)
	progressionService := services.NewProgressionService(milestoneRepo, trackerRepo, userRepo).
		WithNotifier(milestoneWorker)
	walletService := services.NewWalletService(milestoneRepo, trackerRepo, userRepo)

	mailer := email.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppName, cfg.IsDevelopment())
	authService := services.NewAuthService(userRepo, tokenService, progressionService, mailer)

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:         adapterHTTP.NewAuthHandler(authService, services.NewFieldService(repository.NewPostgresFieldRepository(conn))),
		ProfileHandler:      adapterHTTP.NewProfileHandler(services.NewProfileService(userRepo, progressionService)),
		MilestoneHandler:    adapterHTTP.NewMilestoneHandler(progressionService, walletService),
		PodHandler:          adapterHTTP.NewPodHandler(services.NewPodService(repository.NewPostgresPodRepository(conn), walletService, notificationService)),
		JournalHandler:      adapterHTTP.NewJournalHandler(services.NewJournalService(repository.NewPostgresJournalRepository(conn)), services.NewCopingService(repository.NewPostgresCopingRepository(conn))),
		NotificationHandler: adapterHTTP.NewNotificationHandler(notificationService),
		TokenValidator:      tokenService,
		DB:                  conn,
		Redis:               rdb,
		RateLimit:           cfg.RateLimit,
		RateWindow:          cfg.RateWindow,
		MetricsUser:         cfg.MetricsUser,
		MetricsPass:         cfg.MetricsPass,
		StartTime:           startTime,
	}

	if gateway, err := payment.NewGateway(cfg); err != nil {
		slog.Warn("subscriptions disabled", "error", err)
	} else {
		subscriptionService := services.NewSubscriptionService(
			repository.NewPostgresSubscriptionRepository(conn), userRepo, gateway, notificationService, cfg.SubscriptionPlans)
		deps.SubscriptionHandler = adapterHTTP.NewSubscriptionHandler(subscriptionService)
	}

	a := &app{
		milestoneWorker: milestoneWorker,
		reminders:       workers.NewReminderScheduler(trackerRepo, notificationService, cfg.ReminderInterval),
	}
	if rdb == nil {
		a.localLimiter = middleware.NewLocalRateLimiter(cfg.RateLimit, cfg.RateWindow)
		deps.LocalLimiter = a.localLimiter
	}
	a.router = adapterHTTP.NewRouter(deps)
	return a
}

func sweepVisitors(ctx context.Context, l *middleware.LocalRateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Cleanup(); n > 0 {
				slog.Debug("rate limiter visitors removed", "count", n)
			}
		}
	}
}
