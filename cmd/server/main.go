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

	"physiohub/clinic-app/internal/api"
	"physiohub/clinic-app/internal/config"
	"physiohub/clinic-app/internal/logging"
	"physiohub/clinic-app/internal/notice"
	"physiohub/clinic-app/internal/notify"
	"physiohub/clinic-app/internal/repository/postgres"
	"physiohub/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	// --- Configuration ---
	// Load fails closed: a missing pepper or token secret refuses to start
	// rather than run with weakened credential handling.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)
	logger.Info("starting PhysioHUB server")

	// --- Database Connection ---
	db, err := postgres.Connect(cfg.Database.DSN())
	if err != nil {
		logger.Error("could not connect to postgres", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		if err := postgres.Close(db); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	if err := postgres.Migrate(db); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// --- Initialize Repositories ---
	accountRepo := postgres.NewAccountRepository(db)
	treatmentRepo := postgres.NewTreatmentRepository(db)
	exerciseRepo := postgres.NewExerciseRepository(db)

	// Seed the exercise catalog on first run.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := postgres.SeedExercises(seedCtx, exerciseRepo); err != nil {
		logger.Error("exercise catalog seeding failed", "error", err)
	}
	seedCancel()

	// --- Notice Store ---
	var notices notice.Store
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		notices, err = notice.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			logger.Error("could not connect to redis", "error", err)
			os.Exit(1)
		}
		logger.Info("using redis notice store", "addr", cfg.Redis.Addr)
	} else {
		notices = notice.NewMemoryStore()
		logger.Info("using in-memory notice store")
	}

	// --- Notification Collaborator ---
	notifier := notify.New(cfg.Email, cfg.Server.BasePath, accountRepo, logger)

	// --- Initialize Services ---
	authService := service.NewAuthService(accountRepo, cfg.Auth.Pepper, cfg.Auth.JWTSecret, cfg.Auth.BcryptCost, cfg.Auth.JWTExpiration)
	patientService := service.NewPatientService(accountRepo, treatmentRepo, exerciseRepo)
	therapistService := service.NewTherapistService(accountRepo, treatmentRepo, exerciseRepo, notifier, logger)
	adminService := service.NewAdminService(accountRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(
		router,
		cfg.Auth.JWTSecret,
		cfg.Server.BasePath,
		authService,
		patientService,
		therapistService,
		adminService,
		notices,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "address", cfg.Server.Address, "basePath", cfg.Server.BasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen and serve failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exiting")
}
