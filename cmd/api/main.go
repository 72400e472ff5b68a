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

	"go-autofill-backend/config"
	_ "go-autofill-backend/docs" // Important for Swagger
	"go-autofill-backend/internal/delivery/http/middleware"
	v1 "go-autofill-backend/internal/delivery/http/v1"
	"go-autofill-backend/internal/domain"
	"go-autofill-backend/internal/repository/memory"
	"go-autofill-backend/internal/repository/postgres"
	"go-autofill-backend/internal/usecase"
	"go-autofill-backend/pkg/auth"
	"go-autofill-backend/pkg/database"
	"go-autofill-backend/pkg/logger"
	"go-autofill-backend/pkg/redis"
	"go-autofill-backend/pkg/security"
	"go-autofill-backend/pkg/security/antivirus"
	"go-autofill-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// @title           Auto-Fill Assistant API
// @version         1.0
// @description     Backend for the job-application auto-fill dashboard and browser extension.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	secLog := security.InitSecurityLogger("autofill-backend", cfg.GinMode)
	defer secLog.Sync()
	logger.Log.Info("Starting auto-fill backend", "port", cfg.Port, "storage", cfg.StorageDriver)

	// 3. Setup Storage
	store, err := openStore(cfg)
	if err != nil {
		logger.Log.Error("Failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// 4. Setup Redis (optional)
	var cache usecase.Pinger
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory limits", "error", err)
		} else {
			cache = usecase.PingFunc(redis.HealthCheck)
			defer redis.Close()
		}
	}
	redisClient := redis.Client()

	// 5. Setup Security Services
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpirationHours)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	loginTracker := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		BlockDuration: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		UseIPTracking: true,
	}, redisClient, secLog)
	uploadLimiter := security.NewUploadLimiter(cfg.UploadsPerMinute, cfg.UploadsPerDay, redisClient)
	scanner := antivirus.NewScanner(cfg.ClamAVAddress)
	if !scanner.Available(context.Background()) {
		logger.Log.Warn("Malware scanner not reachable; uploads will be rejected until it is", "scanner", scanner.Name())
	}

	// 6. Setup UseCases
	validate := validation.New()
	authUC := usecase.NewAuthUsecase(store, hasher, tokens, validate)
	profileUC := usecase.NewProfileUsecase(store.Profiles(), validate)
	resumeUC := usecase.NewResumeUsecase(store.Resumes(), scanner, secLog, cfg.MaxResumeBytes, validate)
	formHistoryUC := usecase.NewFormHistoryUsecase(store.FormHistories(), store.Statistics(), validate)
	extensionUC := usecase.NewExtensionUsecase(store)
	statisticsUC := usecase.NewStatisticsUsecase(store.Statistics())
	healthUC := usecase.NewHealthUsecase(store, cache)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		ProfileUC:     profileUC,
		ResumeUC:      resumeUC,
		FormHistoryUC: formHistoryUC,
		ExtensionUC:   extensionUC,
		StatisticsUC:  statisticsUC,
		HealthUC:      healthUC,
		Tokens:        tokens,
		LoginTracker:  loginTracker,
		UploadLimiter: uploadLimiter,
		RateLimiter:   middleware.NewRateLimiter(redisClient, secLog),
		SecurityLog:   secLog,
		Config:        cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func openStore(cfg *config.Config) (domain.Store, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		logger.Log.Warn("Using in-memory storage; data is lost on restart")
		return memory.New(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}
	store := postgres.NewStore(pool)
	if cfg.DBMigrate {
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		logger.Log.Info("Database schema applied")
	}
	return store, nil
}
