package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	// RequiredFields name Config fields that must be non-empty.
	RequiredFields []string
	// MinSecretLength is the minimum JWT secret length.
	MinSecretLength int
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {
			RequiredFields:  []string{"SERVER_PORT", "JWT_SECRET"},
			MinSecretLength: 16,
		},
		Test: {
			RequiredFields:  []string{"SERVER_PORT", "JWT_SECRET"},
			MinSecretLength: 16,
		},
		CI: {
			RequiredFields:  []string{"SERVER_PORT", "JWT_SECRET"},
			MinSecretLength: 32,
		},
		Production: {
			RequiredFields:  []string{"SERVER_PORT", "JWT_SECRET", "DB_HOST", "DB_NAME", "DB_USER", "DB_PASSWORD"},
			MinSecretLength: 32,
		},
	}
)

// fieldValue maps a requirement name onto the loaded configuration.
func fieldValue(cfg *Config, name string) string {
	switch name {
	case "SERVER_PORT":
		return cfg.ServerPort
	case "JWT_SECRET":
		return cfg.JWTSecret
	case "DB_HOST":
		return cfg.DBHost
	case "DB_NAME":
		return cfg.DBName
	case "DB_USER":
		return cfg.DBUser
	case "DB_PASSWORD":
		return cfg.DBPassword
	}
	return ""
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var errs []string

	for _, name := range reqs.RequiredFields {
		if name == "DB_HOST" || name == "DB_NAME" || name == "DB_USER" || name == "DB_PASSWORD" {
			if cfg.DBDriver != DriverPostgres {
				continue
			}
		}
		if fieldValue(cfg, name) == "" {
			errs = append(errs, ValidationError{Field: name, Message: "is required"}.Error())
		}
	}

	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < reqs.MinSecretLength {
		errs = append(errs, ValidationError{
			Field:   "JWT_SECRET",
			Message: fmt.Sprintf("must be at least %d characters", reqs.MinSecretLength),
		}.Error())
	}

	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}.Error())
	}

	switch cfg.ImageStore {
	case ImageStoreDB:
	case ImageStoreS3:
		if cfg.S3BucketName == "" {
			errs = append(errs, ValidationError{Field: "S3_BUCKET_NAME", Message: "is required for the s3 image store"}.Error())
		}
	default:
		errs = append(errs, ValidationError{Field: "IMAGE_STORE", Message: fmt.Sprintf("unsupported image store %q", cfg.ImageStore)}.Error())
	}

	if cfg.BcryptCost < 4 || cfg.BcryptCost > 14 {
		errs = append(errs, ValidationError{Field: "BCRYPT_COST", Message: "must be between 4 and 14"}.Error())
	}

	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, ValidationError{Field: "MAX_UPLOAD_BYTES", Message: "must be positive"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
