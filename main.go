package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"servify-server/config"
	"servify-server/database"
	"servify-server/jobs"
	"servify-server/logging"
	"servify-server/middleware"
	"servify-server/routes"
	"servify-server/services"
)

const limiterCleanupInterval = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatalw("server exited with error", "error", err)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warnw("failed to close database", "error", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if cfg.Catalog.Seed {
		if err := database.SeedCatalog(db, logger); err != nil {
			return err
		}
	}

	jwtService := services.NewJWTService(cfg.JWT)
	notifications := services.NewNotificationService(db, logger)
	ratings := services.NewRatingService(db, logger)
	catalog := services.NewCatalogService(db, logger)
	svc := routes.Services{
		JWT:           jwtService,
		Identity:      services.NewIdentityService(db, jwtService, ratings, logger),
		Lifecycle:     services.NewLifecycleService(db, notifications, ratings, catalog, cfg.Lifecycle, logger),
		Ratings:       ratings,
		Chat:          services.NewChatService(db, logger),
		Notifications: notifications,
		Catalog:       catalog,
	}

	if cfg.Server.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit)

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.SecurityHeadersMiddleware(),
		middleware.CORSMiddleware(cfg.CORS),
		limiter.Middleware(logger),
		middleware.InputValidationMiddleware(),
	)
	routes.NewHandler(svc, logger).RegisterRoutes(router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup := jobs.NewPeriodicJob("rate-limiter-cleanup", limiterCleanupInterval, func(context.Context) error {
		limiter.Cleanup()
		return nil
	}, logger)
	cleanup.Start(ctx)
	defer cleanup.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
