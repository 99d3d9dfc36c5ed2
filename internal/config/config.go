package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Blacklist backends
const (
	BlacklistBackendPostgres = "postgres"
	BlacklistBackendRedis    = "redis"
)

// Storage backends
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		CORSOrigins string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		URL             string `yaml:"url" env:"DATABASE_URL"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
		RotateRefreshTokens    bool   `yaml:"rotate_refresh_tokens" env:"JWT_ROTATE_REFRESH_TOKENS"`
		BlacklistAfterRotation bool   `yaml:"blacklist_after_rotation" env:"JWT_BLACKLIST_AFTER_ROTATION"`
		AllowHeaderFallback    bool   `yaml:"allow_header_fallback" env:"JWT_ALLOW_HEADER_FALLBACK"`
	} `yaml:"jwt"`

	Blacklist struct {
		Backend string `yaml:"backend" env:"BLACKLIST_BACKEND"`
	} `yaml:"blacklist"`

	Redis struct {
		URL string `yaml:"url" env:"REDIS_URL"`
	} `yaml:"redis"`

	Storage struct {
		Backend   string `yaml:"backend" env:"STORAGE_BACKEND"`
		LocalPath string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		BaseURL   string `yaml:"base_url" env:"STORAGE_BASE_URL"`
		S3        struct {
			Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
			Region    string `yaml:"region" env:"S3_REGION"`
			Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
			AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
			SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
			PublicURL string `yaml:"public_url" env:"S3_PUBLIC_URL"`
		} `yaml:"s3"`
	} `yaml:"storage"`

	Admin struct {
		Email    string `yaml:"email" env:"ADMIN_EMAIL"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
	} `yaml:"admin"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional; variables already present in the environment win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "debug"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "uniadmin"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = ""

	config.JWT.AccessTokenExpiration = "15m"
	config.JWT.RefreshTokenExpiration = "24h"
	config.JWT.Issuer = "uniadmin"
	config.JWT.RotateRefreshTokens = true

	config.Blacklist.Backend = BlacklistBackendPostgres
	config.Redis.URL = "redis://localhost:6379/0"

	config.Storage.Backend = StorageBackendLocal
	config.Storage.LocalPath = "media"
	config.Storage.BaseURL = "/media"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	switch config.Blacklist.Backend {
	case BlacklistBackendPostgres:
	case BlacklistBackendRedis:
		if config.Redis.URL == "" {
			return fmt.Errorf("redis url is required for the redis blacklist backend")
		}
	default:
		return fmt.Errorf("unknown blacklist backend %q", config.Blacklist.Backend)
	}

	switch config.Storage.Backend {
	case StorageBackendLocal:
		if config.Storage.LocalPath == "" {
			return fmt.Errorf("storage local_path is required for the local backend")
		}
	case StorageBackendS3:
		if config.Storage.S3.Bucket == "" || config.Storage.S3.Region == "" {
			return fmt.Errorf("s3 bucket and region are required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}

	return nil
}

// IsDebug reports whether the server runs in local development mode.
// Cookies are only sent without the Secure flag in this mode.
func (c *Config) IsDebug() bool {
	return strings.EqualFold(c.Server.Mode, "debug")
}

// AllowedOrigins returns the comma separated CORS origins as a slice
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
