package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"props_edge_backend/cache"
	"props_edge_backend/config"
	"props_edge_backend/notifier"
	"props_edge_backend/routes"
	"props_edge_backend/scheduler"
	"props_edge_backend/services/datafetcher"
	"props_edge_backend/services/eval"
	"props_edge_backend/services/leagues"
	"props_edge_backend/services/scan"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("config load failed: %v", err)
	}

	log := newLogger(cfg)
	log.Info("==============================================")
	log.Info("  Props Edge API - Starting...")
	log.Info("==============================================")

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger(log))

	setupHealthEndpoints(router)

	// Cache store: Redis when configured, in-process otherwise.
	var store cache.Store
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = cache.NewRedisStore(redisClient, log)
		log.WithField("addr", cfg.RedisAddr).Info("using Redis cache store")
	} else {
		store = cache.NewMemoryStore()
		log.Info("no REDIS_ADDR configured, using in-process cache store")
	}

	loc := cfg.Location()

	// Upstream gateways. Only the league modules hold these, and only the
	// scheduler holds the modules: the read path cannot reach upstream.
	budget := datafetcher.NewCallBudget(store, cfg.DailyCallBudget, loc, log)
	statsClient := datafetcher.NewStatsAPIClient(cfg.MLBStatsBaseURL, cfg.UpstreamTimeout, log)
	oddsClient := datafetcher.NewOddsAPIClient(cfg.OddsBaseURL, cfg.OddsAPIKey, cfg.OddsMaxAbs, cfg.UpstreamTimeout, log)
	nflStore := datafetcher.NewNFLCSVStore(cfg.NFLCSVPath)

	registry := leagues.NewRegistry()
	registry.Register(leagues.NewMLB(statsClient, oddsClient, budget, cfg.Season, cfg.OddsMaxEvents, cfg.OddsPerEventCap))
	registry.Register(leagues.NewNFL(nflStore, oddsClient, budget, cfg.OddsMaxEvents, cfg.OddsPerEventCap))

	thresholds := eval.Thresholds{
		StraightEdgeMin:  cfg.StraightEdgeMin,
		StraightTrendMin: cfg.StraightTrendMin,
		ParlayEdgeMin:    cfg.ParlayEdgeMin,
		TrendMinGames:    cfg.TrendMinGames,
	}
	scanner := scan.New(store, thresholds, loc, log)

	digest, err := notifier.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, log)
	if err != nil {
		log.WithError(err).Warn("telegram digest disabled")
	}

	jobScheduler := scheduler.NewScheduler(cfg, log, store, registry, scanner, digest)

	routes.SetupRoutes(router, &routes.Deps{
		Store:     store,
		Scanner:   scanner,
		Scheduler: jobScheduler,
		Location:  loc,
		Log:       log,
	})

	// Create HTTP server with explicit timeouts
	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Warm jobs run in the background, gated by the leader flag.
	jobScheduler.Start()

	gracefulShutdown(server, jobScheduler, redisClient, log)
}

// newLogger builds the process-wide structured logger.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.Environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// setupHealthEndpoints sets up liveness endpoints before anything else so
// the platform can see the service is up.
func setupHealthEndpoints(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Props Edge API",
			"version": "1.0.0",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}

// corsMiddleware returns a CORS middleware handler
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger returns a request logging middleware
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks to reduce noise
		path := c.Request.URL.Path
		if path == "/health" || path == "/" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		// Only log errors or slow requests in production
		if c.Writer.Status() >= 400 || duration > 1*time.Second {
			log.WithFields(logrus.Fields{
				"method":   c.Request.Method,
				"path":     path,
				"status":   c.Writer.Status(),
				"duration": duration.String(),
			}).Warn("request")
		}
	}
}

// gracefulShutdown handles graceful shutdown of the server
func gracefulShutdown(server *http.Server, jobScheduler *scheduler.Scheduler, redisClient *redis.Client, log *logrus.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.WithField("signal", sig.String()).Info("shutting down gracefully")

	// Stop scheduler first so no warm job writes during drain
	jobScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("server forced to shutdown")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Warn("redis close failed")
		} else {
			log.Info("redis connection closed")
		}
	}

	log.Info("server shutdown completed")
}
