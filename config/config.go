package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ImageStoreDB = "db"
	ImageStoreS3 = "s3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration. Redis is optional; an empty RedisHost and
	// RedisURL disables it.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Session configuration
	JWTSecret    string
	BcryptCost   int
	CookieSecure bool

	// CORS origins allowed to fetch media and health endpoints
	CORSOrigins []string

	// Image storage
	ImageStore     string
	S3BucketName   string
	S3Region       string
	MaxUploadBytes int64
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	// Load configuration based on environment
	switch env {
	case CI, Development, Test:
		if err := loadEnvConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	applyDefaults(cfg, env)

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvConfig reads every setting from environment variables.
func loadEnvConfig(cfg *Config) error {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBDriver = os.Getenv("DB_DRIVER")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.ImageStore = os.Getenv("IMAGE_STORE")
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.S3Region = os.Getenv("AWS_REGION")
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ORIGINS"))
	cfg.CookieSecure = os.Getenv("COOKIE_SECURE") == "true"

	var err error
	if cfg.RedisDB, err = intFromEnv("REDIS_DB"); err != nil {
		return err
	}
	if cfg.BcryptCost, err = intFromEnv("BCRYPT_COST"); err != nil {
		return err
	}
	maxUpload, err := intFromEnv("MAX_UPLOAD_BYTES")
	if err != nil {
		return err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	return nil
}

// loadProdConfig loads configuration for production. Credentials come only
// from Docker secrets; non-sensitive settings may come from the environment.
func loadProdConfig(cfg *Config) error {
	if err := loadEnvConfig(cfg); err != nil {
		return err
	}

	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.JWTSecret = readSecret("jwt_secret")
	if url := readSecret("redis_url"); url != "" {
		cfg.RedisURL = url
	}
	// Secure cookies are mandatory outside development.
	cfg.CookieSecure = true

	return nil
}

func applyDefaults(cfg *Config, env Environment) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DBDriver == "" {
		if env == Production {
			cfg.DBDriver = DriverPostgres
		} else {
			cfg.DBDriver = DriverSQLite
		}
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "snapfeed.db"
	}
	if cfg.RedisHost != "" && cfg.RedisPort == "" {
		cfg.RedisPort = "6379"
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.ImageStore == "" {
		cfg.ImageStore = ImageStoreDB
	}
	if cfg.S3BucketName == "" {
		cfg.S3BucketName = "snapfeed-media"
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.JWTSecret == "" && (env == Development || env == Test) {
		cfg.JWTSecret = "development-only-secret-change-me-please"
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func intFromEnv(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
