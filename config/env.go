package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

var environmentNames = map[string]Environment{
	"development": Development,
	"dev":         Development,
	"test":        Test,
	"ci":          CI,
	"production":  Production,
	"prod":        Production,
}

// ParseEnvironment maps an ENV value onto an Environment. Unknown and empty
// values mean development.
func ParseEnvironment(name string) Environment {
	if env, ok := environmentNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return env
	}
	return Development
}

// GetEnvironment determines the current environment. CI=true overrides ENV.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// IsDevelopment returns true if the current environment is development
func IsDevelopment() bool {
	return GetEnvironment() == Development
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}
