package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const insecureDefaultSecret = "change-me-estate-jwt-secret"

// Config holds all configuration for the service.
type Config struct {
	ServiceName            string        `mapstructure:"SERVICE_NAME"`
	Env                    string        `mapstructure:"ENV"`
	HTTPPort               string        `mapstructure:"HTTP_PORT"`
	GRPCHealthPort         string        `mapstructure:"GRPC_HEALTH_PORT"`
	MongoURI               string        `mapstructure:"MONGO_URI"`
	MongoDatabase          string        `mapstructure:"MONGO_DATABASE"`
	RedisAddress           string        `mapstructure:"REDIS_ADDRESS"`
	ListingCacheTTL        time.Duration `mapstructure:"LISTING_CACHE_TTL"`
	NATSURL                string        `mapstructure:"NATS_URL"`
	MinioEndpoint          string        `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey         string        `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey         string        `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket            string        `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL            bool          `mapstructure:"MINIO_USE_SSL"`
	JWTSecret              string        `mapstructure:"JWT_SECRET"`
	TokenTTL               time.Duration `mapstructure:"TOKEN_TTL"`
	CookieSecure           bool          `mapstructure:"COOKIE_SECURE"`
	MaxImages              int           `mapstructure:"MAX_IMAGES"`
	MaxImageBytes          int64         `mapstructure:"MAX_IMAGE_BYTES"`
	UploadTimeout          time.Duration `mapstructure:"UPLOAD_TIMEOUT"`
	PrometheusMetricsPort  string        `mapstructure:"PROMETHEUS_METRICS_PORT"`
	LogLevel               string        `mapstructure:"LOG_LEVEL"`
	LogFormat              string        `mapstructure:"LOG_FORMAT"`
	LogOutputFile          string        `mapstructure:"LOG_OUTPUT_FILE"`
	OTExporterOTLPEndpoint string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SMTPHost               string        `mapstructure:"SMTP_HOST"`
	SMTPPort               int           `mapstructure:"SMTP_PORT"`
	SMTPEmail              string        `mapstructure:"SMTP_EMAIL"`
	SMTPPassword           string        `mapstructure:"SMTP_PASSWORD"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "estate-service")
	v.SetDefault("ENV", "development")
	v.SetDefault("HTTP_PORT", "3000")
	v.SetDefault("GRPC_HEALTH_PORT", "")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "real_estate")
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("LISTING_CACHE_TTL", time.Hour)
	v.SetDefault("NATS_URL", "")
	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "listing-images")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("JWT_SECRET", insecureDefaultSecret)
	v.SetDefault("TOKEN_TTL", 7*24*time.Hour)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("MAX_IMAGES", 6)
	v.SetDefault("MAX_IMAGE_BYTES", 2<<20)
	v.SetDefault("UPLOAD_TIMEOUT", 30*time.Second)
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9094")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT_FILE", "stdout")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "") // e.g. "otel-collector:4317"
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_EMAIL", "")
	v.SetDefault("SMTP_PASSWORD", "")
}

// LoadConfig reads configuration from environment variables. main loads .env beforehand.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}

	if cfg.JWTSecret == insecureDefaultSecret {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		appLogger.Warn("JWT_SECRET is set to its default insecure value. Please set a strong secret in your environment.")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.Error("Invalid configuration", zap.Error(err))
		return nil, err
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("redis_address", cfg.RedisAddress),
		zap.String("nats_url", cfg.NATSURL),
		zap.String("minio_endpoint", cfg.MinioEndpoint),
		zap.Bool("jwt_secret_present", cfg.JWTSecret != ""),
		zap.Duration("token_ttl", cfg.TokenTTL),
		zap.Int("max_images", cfg.MaxImages),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
		zap.Bool("smtp_enabled", cfg.SMTPHost != ""),
	)
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("JWT_SECRET is required")
	case c.MongoURI == "" || c.MongoDatabase == "":
		return errors.New("MONGO_URI and MONGO_DATABASE are required")
	case c.HTTPPort == "":
		return errors.New("HTTP_PORT is required")
	case c.MaxImages < 1:
		return fmt.Errorf("MAX_IMAGES must be at least 1, got %d", c.MaxImages)
	case c.MaxImageBytes <= 0:
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", c.MaxImageBytes)
	case c.TokenTTL <= 0:
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	case c.UploadTimeout <= 0:
		return fmt.Errorf("UPLOAD_TIMEOUT must be positive, got %s", c.UploadTimeout)
	case c.ListingCacheTTL <= 0:
		return fmt.Errorf("LISTING_CACHE_TTL must be positive, got %s", c.ListingCacheTTL)
	}
	return nil
}

// LoggerConfig returns the logging settings for logger.New.
func (c *Config) LoggerConfig() *logger.LoggerConfig {
	return &logger.LoggerConfig{Level: c.LogLevel, Format: c.LogFormat, OutputFile: c.LogOutputFile}
}

func (c *Config) IsProduction() bool { return c.Env == "production" }
