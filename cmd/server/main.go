package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"github.com/sefran12/the-garden-of-forking-paths/internal/api"
	"github.com/sefran12/the-garden-of-forking-paths/internal/config"
	"github.com/sefran12/the-garden-of-forking-paths/internal/engine"
	"github.com/sefran12/the-garden-of-forking-paths/internal/llm"
	"github.com/sefran12/the-garden-of-forking-paths/internal/logger"
	"github.com/sefran12/the-garden-of-forking-paths/internal/prompts"
	"github.com/sefran12/the-garden-of-forking-paths/internal/storage"
	"github.com/sefran12/the-garden-of-forking-paths/internal/story"
)

func main() {
	log.Println("Starting narrative server...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

	// --- Save repository: PostgreSQL when configured, in-memory otherwise ---
	var saveRepo story.SaveRepository
	if cfg.DatabaseURL != "" {
		dbPool, err := setupPostgres(context.Background(), cfg)
		if err != nil {
			zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer dbPool.Close()

		pgRepo := storage.NewPgSaveRepository(dbPool, zapLogger)
		if err := pgRepo.InitSchema(context.Background()); err != nil {
			zap.L().Fatal("Failed to initialize database schema", zap.Error(err))
		}
		saveRepo = pgRepo
		zap.L().Info("Using PostgreSQL save repository")
	} else {
		saveRepo = storage.NewMemorySaveRepository()
		zap.L().Info("DATABASE_URL not set, using in-memory save repository")
	}

	// --- AI clients and workflow engine ---
	clientPool := llm.NewPool(llm.Settings{
		OllamaBaseURL:   cfg.OllamaBaseURL,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		TogetherAPIKey:  cfg.TogetherAPIKey,
		TogetherBaseURL: cfg.TogetherBaseURL,
		RequestTimeout:  cfg.AITimeout,
	}, zapLogger)

	promptProvider := prompts.NewProvider(cfg.PromptsDir, zapLogger)
	registry := engine.NewRegistry(clientPool, promptProvider, zapLogger)
	metaGenerator := story.NewMetadataGenerator(clientPool, promptProvider, zapLogger)
	adapter := story.NewAdapter(registry, metaGenerator, saveRepo, zapLogger)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(api.ZapLogging(zapLogger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	handler := api.NewHandler(adapter, api.Defaults{
		Provider:  cfg.DefaultProvider,
		Model:     cfg.DefaultModel,
		Workflow:  cfg.DefaultWorkflow,
		Timeout:   cfg.AITimeout,
		MaxScenes: cfg.MaxContextScenes,
	}, zapLogger)
	handler.RegisterRoutes(router)

	// Prometheus middleware goes on after route registration.
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// setupPostgres initializes the PostgreSQL connection pool with retry logic.
func setupPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}

	var pool *pgxpool.Pool
	var lastErr error
	maxRetries := 10
	retryDelay := 3 * time.Second

	zap.L().Info("Attempting to connect to PostgreSQL",
		zap.Int("max_retries", maxRetries), zap.Duration("retry_delay", retryDelay))

	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)

		pool, lastErr = pgxpool.NewWithConfig(connectCtx, poolConfig)
		if lastErr == nil {
			lastErr = pool.Ping(connectCtx)
			if lastErr == nil {
				connectCancel()
				zap.L().Info("Connected to PostgreSQL", zap.Int("attempt", attempt))
				return pool, nil
			}
			pool.Close()
		}
		connectCancel()

		zap.L().Warn("PostgreSQL connection attempt failed",
			zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries), zap.Error(lastErr))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
}
