package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ToaaMusic/ai-main/internal/config"
	"github.com/ToaaMusic/ai-main/internal/database"
	"github.com/ToaaMusic/ai-main/internal/handlers"
	"github.com/ToaaMusic/ai-main/internal/logging"
	"github.com/ToaaMusic/ai-main/internal/metrics"
	"github.com/ToaaMusic/ai-main/internal/pricing"
	"github.com/ToaaMusic/ai-main/internal/ratelimit"
	"github.com/ToaaMusic/ai-main/internal/search"
	"github.com/ToaaMusic/ai-main/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables, err := pricing.LoadTables(cfg.PricingTablesFile)
	if err != nil {
		return err
	}
	if cfg.PricingTablesFile != "" {
		log.Info("pricing tables loaded", zap.String("file", cfg.PricingTablesFile), zap.Int("brands", len(tables.Brands)))
	}
	estimator := pricing.NewEstimator(tables)

	db, err := database.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		return err
	}
	if err := db.EnsureAdminUser(ctx, cfg); err != nil {
		log.Warn("could not ensure admin user", zap.Error(err))
	}

	store, err := newImageStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	seg, err := search.LoadSegmenter()
	if err != nil {
		log.Warn("segmenter unavailable, search keywords fall back to whitespace splitting", zap.Error(err))
	}
	indexer := search.NewIndexer(seg)
	for _, word := range cfg.SearchWords {
		indexer.AddWord(word)
	}
	if categories, err := db.ListCategories(ctx); err != nil {
		log.Warn("could not load category names into the segmenter", zap.Error(err))
	} else {
		for _, c := range categories {
			indexer.AddWord(c.Name)
		}
	}

	limiter, closeLimiter := newPricingLimiter(ctx, cfg, log)
	defer closeLimiter()

	metrics.MustRegister()

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(log),
		BodyLimit:             int(cfg.MaxUploadBytes) + 1<<20,
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(metrics.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	h := handlers.New(db, cfg, log, estimator, store, indexer)
	h.Routes(app, limiter)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func newImageStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.ImageStore, error) {
	if !cfg.S3Enabled {
		log.Info("storing images on local disk", zap.String("dir", cfg.UploadDir))
		return services.NewLocalStore(cfg.UploadDir)
	}

	store, err := services.NewS3Store(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("storing images in S3", zap.String("endpoint", cfg.S3Endpoint), zap.String("bucket", cfg.S3Bucket))
	return store, nil
}

// newPricingLimiter prefers Redis so the limit holds across replicas, and
// falls back to process memory when Redis is not configured or unreachable.
func newPricingLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) (ratelimit.Limiter, func()) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err := client.Ping(pingCtx).Err()
		if err == nil {
			log.Info("rate limiting with redis", zap.String("addr", cfg.RedisAddr))
			return ratelimit.NewRedisLimiter(client, "ratelimit:ai-pricing", cfg.RateLimit, cfg.RateLimitWindow),
				func() { _ = client.Close() }
		}
		log.Warn("redis unreachable, rate limiting in memory", zap.Error(err))
		_ = client.Close()
	}

	mem := ratelimit.NewMemoryLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	return mem, mem.Stop
}
