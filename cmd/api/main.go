package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gigboardhq/gigboard-backend/api/routes"
	"github.com/gigboardhq/gigboard-backend/internal/applications"
	"github.com/gigboardhq/gigboard-backend/internal/auth"
	"github.com/gigboardhq/gigboard-backend/internal/gigs"
	"github.com/gigboardhq/gigboard-backend/internal/notifications"
	"github.com/gigboardhq/gigboard-backend/internal/profiles"
	"github.com/gigboardhq/gigboard-backend/internal/uploads"
	"github.com/gigboardhq/gigboard-backend/internal/users"
	"github.com/gigboardhq/gigboard-backend/pkg/auth/session"
	"github.com/gigboardhq/gigboard-backend/pkg/config"
	"github.com/gigboardhq/gigboard-backend/pkg/db"
	"github.com/gigboardhq/gigboard-backend/pkg/env"
	"github.com/gigboardhq/gigboard-backend/pkg/logger"
	"github.com/gigboardhq/gigboard-backend/pkg/metrics"
	"github.com/gigboardhq/gigboard-backend/pkg/migrate"
	"github.com/gigboardhq/gigboard-backend/pkg/outbox"
	"github.com/gigboardhq/gigboard-backend/pkg/redis"
	"github.com/gigboardhq/gigboard-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	gigRepo := gigs.NewRepository(dbClient.DB())
	applicationRepo := applications.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        userRepo,
		SessionManager:  sessionManager,
		RateLimiter:     redisClient,
		JWTConfig:       cfg.JWT,
		RateLimitConfig: cfg.AuthRateLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:        dbClient,
		RateLimiter:     redisClient,
		PasswordConfig:  cfg.Password,
		RateLimitConfig: cfg.AuthRateLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	uploadsService, err := uploads.NewService(gcsClient, cfg.GCS.BucketName, cfg.GCS.UploadURLExpiry, cfg.GCS.DownloadURLExpiry)
	if err != nil {
		logg.Error(context.Background(), "failed to create uploads service", err)
		os.Exit(1)
	}

	profilesService, err := profiles.NewService(profiles.ServiceParams{
		UserRepo: userRepo,
		Cleaner:  uploadsService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create profiles service", err)
		os.Exit(1)
	}

	gigsService, err := gigs.NewService(gigs.ServiceParams{
		TxRunner:   dbClient,
		GigRepo:    gigRepo,
		Outbox:     outboxService,
		Applicants: applicationRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create gigs service", err)
		os.Exit(1)
	}

	notifier, err := applications.NewOutboxNotifier(dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox notifier", err)
		os.Exit(1)
	}

	applicationsService, err := applications.NewService(applications.ServiceParams{
		TxRunner: dbClient,
		Repo:     applicationRepo,
		UserRepo: userRepo,
		GigRepo:  gigRepo,
		Notifier: notifier,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create applications service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:         cfg,
			Logger:         logg,
			SessionChecker: sessionManager,
			HTTPMetrics:    httpMetrics,
			Gatherer:       registry,

			DBPinger:    dbClient,
			RedisPinger: redisClient,
			GCSPinger:   gcsClient,

			AuthService:          authService,
			RegisterService:      registerService,
			ProfilesService:      profilesService,
			GigsService:          gigsService,
			ApplicationsService:  applicationsService,
			NotificationsService: notificationsService,
			UploadsService:       uploadsService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown error", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
