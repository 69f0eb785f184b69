package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageMinIO = "minio"
)

type Config struct {
	Port       string
	CORSOrigin string
	JWTSecret  string

	DBDriver string
	DBURL    string

	StorageDriver  string
	UploadDir      string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	RedisURL     string
	TreeCacheTTL time.Duration

	IngestConcurrency int
	DefaultWorkspace  string

	LogLevel  string
	LogPretty bool
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		JWTSecret:  getEnv("JWT_SECRET", ""),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBURL:    mustEnv("DB_URL"),

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageLocal)),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "fabtrack"),
		MinIOUseSSL:    getBool("MINIO_USE_SSL", false),

		RedisURL:     getEnv("REDIS_URL", ""),
		TreeCacheTTL: getDuration("TREE_CACHE_TTL", 30*time.Second),

		IngestConcurrency: getInt("INGEST_CONCURRENCY", 4),
		DefaultWorkspace:  getEnv("DEFAULT_WORKSPACE", "Default"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getBool("LOG_PRETTY", false),
	}

	if cfg.StorageDriver == StorageMinIO {
		cfg.MinIOEndpoint = mustEnv("MINIO_ENDPOINT")
	}
	return cfg
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatal().Str("key", key).Msg("missing required environment variable")
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}
