package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Broker   BrokerConfig
	JWT      JWTConfig
	Storage  StorageConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is; otherwise built from components
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// RedisConfig holds Redis connection settings for the video-list cache.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	VideoListTTLSec int
}

// BrokerConfig holds RabbitMQ connection settings. The connection is opened
// per publish, so only the URL parameters live here.
type BrokerConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
	Queue    string
	TLS      bool // amqps; disable only for plaintext local brokers
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// Storage backend identifiers.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// StorageConfig selects the upload storage backend and its parameters.
type StorageConfig struct {
	Backend              string // "local" or "s3"
	LocalBasePath        string // base directory for the local backend
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	Bucket               string
	PresignExpireMinutes int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// URL returns the AMQP connection string. The amqps scheme is used unless
// TLS is explicitly disabled.
func (c BrokerConfig) URL() string {
	scheme := "amqp"
	if c.TLS {
		scheme = "amqps"
	}
	vhost := c.VHost
	if !strings.HasPrefix(vhost, "/") {
		vhost = "/" + vhost
	}
	return fmt.Sprintf("%s://%s:%s@%s:%s%s", scheme, c.User, c.Password, c.Host, c.Port, vhost)
}

// VideoListTTL returns the cache TTL for a user's video list.
func (c RedisConfig) VideoListTTL() time.Duration {
	if c.VideoListTTLSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.VideoListTTLSec) * time.Second
}

// PresignExpire returns the validity window for presigned download URLs.
func (c StorageConfig) PresignExpire() time.Duration {
	if c.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.PresignExpireMinutes) * time.Minute
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "24"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "videogateway"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "localhost:6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              redisDB,
			VideoListTTLSec: getEnvInt("REDIS_VIDEO_LIST_TTL_SEC", 60),
		},
		Broker: BrokerConfig{
			Host:     getEnv("MQ_HOST", "localhost"),
			Port:     getEnv("MQ_PORT", "5671"),
			User:     getEnv("MQ_USER", "guest"),
			Password: getEnv("MQ_PASSWORD", "guest"),
			VHost:    getEnv("MQ_VHOST", "/"),
			Queue:    getEnv("MQ_QUEUE", "video_processing"),
			TLS:      getEnvBool("MQ_TLS", true),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		Storage: StorageConfig{
			Backend:              getEnv("STORAGE_BACKEND", StorageBackendLocal),
			LocalBasePath:        getEnv("SHARED_DIR", "/data"),
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:               getEnv("AWS_S3_UPLOADS_BUCKET", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
	}

	if cfg.Storage.Backend != StorageBackendLocal && cfg.Storage.Backend != StorageBackendS3 {
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == StorageBackendS3 && cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("AWS_S3_UPLOADS_BUCKET is required for the s3 storage backend")
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
