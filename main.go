package main

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DeepanshiGandhi/Image-Tracker/config"
	"github.com/DeepanshiGandhi/Image-Tracker/geo"
	"github.com/DeepanshiGandhi/Image-Tracker/handlers"
	"github.com/DeepanshiGandhi/Image-Tracker/initializers"
	"github.com/DeepanshiGandhi/Image-Tracker/jobs"
	"github.com/DeepanshiGandhi/Image-Tracker/limiter"
	"github.com/DeepanshiGandhi/Image-Tracker/logger"
	"github.com/DeepanshiGandhi/Image-Tracker/routes"
	"github.com/DeepanshiGandhi/Image-Tracker/store"
	"github.com/DeepanshiGandhi/Image-Tracker/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := initializers.ConnectToDatabase(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}

	resolver := geo.NewResolver(cfg.GeoDBPath, cfg.GeoURL, cfg.GeoTimeout, zlog)
	defer resolver.Close()

	var rl limiter.Limiter
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			opt = &redis.Options{Addr: cfg.RedisURL}
		}
		client := redis.NewClient(opt)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			zlog.Fatal("redis connection failed", zap.Error(err))
		}
		cancel()

		rl = limiter.NewRedis(client, cfg.RateLimit, cfg.RateWindow, zlog)
		zlog.Info("rate limiting via redis", zap.String("addr", opt.Addr))
	} else {
		rl = limiter.NewMemory(cfg.RateLimit, cfg.RateWindow)
	}

	var mirror *initializers.S3Mirror
	if cfg.S3Bucket != "" {
		mirror, err = initializers.NewS3Mirror(context.Background(), cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			zlog.Fatal("s3 mirror setup failed", zap.Error(err))
		}
		zlog.Info("mirroring artifacts to s3", zap.String("bucket", cfg.S3Bucket))
	}

	issuer := tracker.NewIssuer(func(id string) bool {
		matches, _ := filepath.Glob(filepath.Join(cfg.OutputDir, "*_"+id+".*"))
		return len(matches) > 0
	})

	trackerHandlers := &handlers.Tracker{
		Store:   store.NewGormHitStore(db),
		Geo:     resolver,
		Encoder: tracker.NewEncoder(cfg.BaseURL, cfg.PixelFetchTimeout),
		Issuer:  issuer,
		Mirror:  mirror,
		Cfg:     cfg,
		Log:     zlog,
	}
	authHandlers := &handlers.Auth{
		DB:     db,
		Secret: []byte(cfg.JWTSecret),
		Log:    zlog,
	}

	jobs.StartCleanupJob(cfg.OutputDir, cfg.RetentionDays, zlog)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.Default())

	routes.Register(router, trackerHandlers, authHandlers, rl, []byte(cfg.JWTSecret))

	zlog.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("base_url", cfg.BaseURL))
	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
