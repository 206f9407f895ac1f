package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string // public base URL baked into callback references
	DatabaseURL string
	RedisURL    string // optional; enables shared rate-limit counters

	OutputDir     string
	RedirectURL   string // destination for click-through redirects
	JWTSecret     string
	RetentionDays int // 0 disables the cleanup sweep

	GeoDBPath         string // optional offline mmdb; fallback service used when empty
	GeoURL            string
	GeoTimeout        time.Duration
	RateLimit         int
	RateWindow        time.Duration
	S3Bucket          string // optional artifact mirror
	S3Region          string
	PixelFetchTimeout time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL environment variable is required")
	}

	port := envOr("PORT", "8080")
	baseURL := envOr("BASE_URL", "http://localhost:"+port)

	cfg := &Config{
		Environment:       envOr("ENVIRONMENT", "development"),
		Port:              port,
		BaseURL:           baseURL,
		DatabaseURL:       dbURL,
		RedisURL:          os.Getenv("REDIS_URL"),
		OutputDir:         envOr("OUTPUT_DIR", "generated"),
		RedirectURL:       envOr("REDIRECT_URL", baseURL+"/"),
		JWTSecret:         envOr("JWT_SECRET", "dev_secret_change_this"),
		RetentionDays:     envOrInt("RETENTION_DAYS", 0),
		GeoDBPath:         os.Getenv("GEOIP_DB_PATH"),
		GeoURL:            envOr("GEO_FALLBACK_URL", "http://ip-api.com/json"),
		GeoTimeout:        time.Duration(envOrInt("GEO_TIMEOUT_SECONDS", 4)) * time.Second,
		RateLimit:         envOrInt("RATE_LIMIT", 60),
		RateWindow:        time.Duration(envOrInt("RATE_WINDOW_SECONDS", 60)) * time.Second,
		S3Bucket:          os.Getenv("AWS_BUCKET_NAME"),
		S3Region:          os.Getenv("AWS_REGION"),
		PixelFetchTimeout: time.Duration(envOrInt("PIXEL_FETCH_TIMEOUT_SECONDS", 5)) * time.Second,
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
