package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/wordsync/api/internal/cache"
	"github.com/wordsync/api/internal/config"
	"github.com/wordsync/api/internal/gemini"
	"github.com/wordsync/api/internal/handler"
	"github.com/wordsync/api/internal/limiter"
	"github.com/wordsync/api/internal/middleware"
	"github.com/wordsync/api/internal/reconcile"
	"github.com/wordsync/api/internal/store"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.IsDev() {
		logLevel = slog.LevelDebug
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"database_driver", cfg.DatabaseDriver,
	)

	// Initialize store (migrates SQL backends)
	wordStore, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	engine := reconcile.New(wordStore,
		reconcile.WithTimeLayout(cfg.ServerTimeLayout),
		reconcile.WithLogger(logger),
	)

	// Initialize Redis (optional, fail-open)
	var (
		redisCache    *cache.RedisCache
		responseCache handler.Cache
		rateLimiter   *limiter.Limiter
	)
	if cfg.RedisURL != "" {
		redisCache, err = cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, running without cache and rate limits", "error", err)
			redisCache = nil
		} else {
			responseCache = redisCache
			rateLimiter = limiter.NewLimiter(redisCache, map[string]limiter.ActionConfig{
				limiter.ActionSync:   {Limit: cfg.SyncRateLimit, Window: cfg.RateLimitWindow},
				limiter.ActionGemini: {Limit: cfg.GeminiRateLimit, Window: cfg.RateLimitWindow},
			})
		}
	}

	// Initialize Gemini client (optional)
	var generator gemini.Generator
	geminiClient, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Warn("gemini disabled", "error", err)
	} else {
		generator = geminiClient
	}

	// Initialize handlers
	syncHandler := handler.NewSyncHandler(engine, responseCache, logger)
	geminiHandler := handler.NewGeminiHandler(generator, responseCache, cfg.GeminiCacheTTL, logger)

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "hello"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	syncLimit := middleware.RateLimit(rateLimiter, limiter.ActionSync, logger)
	r.POST("/sync", syncLimit, syncHandler.Sync)
	r.GET("/sync/pullAll", syncLimit, syncHandler.PullAll)
	r.GET("/sync/stats", syncHandler.Stats)
	r.GET("/sync/export", syncLimit, syncHandler.Export)

	r.GET("/gemini", middleware.RateLimit(rateLimiter, limiter.ActionGemini, logger), geminiHandler.Generate)

	// CORS wraps the whole engine so pre-flight requests never reach gin
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	if err := wordStore.Close(); err != nil {
		logger.Error("store close failed", "error", err)
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Error("redis close failed", "error", err)
		}
	}
	logger.Info("server stopped")
}
