package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/smartsecretaria/secretaria/internal/pkg/helpers"
	"github.com/smartsecretaria/secretaria/internal/pkg/validation"
)

// Session storage drivers
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config structure represents the application configuration
type Config struct {
	App struct {
		Name    string `yaml:"name" env:"APP_NAME"`
		Version string `yaml:"version" env:"APP_VERSION"`
	} `yaml:"app"`

	API struct {
		BaseURL   string `yaml:"base_url" env:"API_BASE_URL"`
		Timeout   string `yaml:"timeout" env:"API_TIMEOUT"`
		LoginPath string `yaml:"login_path" env:"API_LOGIN_PATH"`
	} `yaml:"api"`

	Validation struct {
		Mode string `yaml:"mode" env:"VALIDATION_MODE"`
	} `yaml:"validation"`

	Storage struct {
		Driver           string `yaml:"driver" env:"STORAGE_DRIVER"`
		Path             string `yaml:"path" env:"STORAGE_PATH"`
		RedisAddr        string `yaml:"redis_addr" env:"REDIS_ADDR"`
		RedisPassword    string `yaml:"redis_password" env:"REDIS_PASSWORD"`
		RedisDB          int    `yaml:"redis_db" env:"REDIS_DB"`
		Prefix           string `yaml:"prefix" env:"STORAGE_PREFIX"`
		AccessTokenKey   string `yaml:"access_token_key" env:"STORAGE_ACCESS_TOKEN_KEY"`
		RefreshTokenKey  string `yaml:"refresh_token_key" env:"STORAGE_REFRESH_TOKEN_KEY"`
		AuthenticatedKey string `yaml:"authenticated_key" env:"STORAGE_AUTHENTICATED_KEY"`
	} `yaml:"storage"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	MockAPI struct {
		Port           string `yaml:"port" env:"MOCKAPI_PORT"`
		Mode           string `yaml:"mode" env:"MOCKAPI_MODE"`
		PathPrefix     string `yaml:"path_prefix" env:"MOCKAPI_PATH_PREFIX"`
		PublicURL      string `yaml:"public_url" env:"MOCKAPI_PUBLIC_URL"`
		ValidationMode string `yaml:"validation_mode" env:"MOCKAPI_VALIDATION_MODE"`
		RotateRefresh  bool   `yaml:"rotate_refresh" env:"MOCKAPI_ROTATE_REFRESH"`
		MediaPath      string `yaml:"media_path" env:"MOCKAPI_MEDIA_PATH"`
		Seed           bool   `yaml:"seed" env:"MOCKAPI_SEED"`
		Username       string `yaml:"username" env:"MOCKAPI_USERNAME"`
		Password       string `yaml:"password" env:"MOCKAPI_PASSWORD"`

		JWT struct {
			Secret                 string `yaml:"secret" env:"JWT_SECRET"`
			AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
			RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
			Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
		} `yaml:"jwt"`
	} `yaml:"mockapi"`
}

// LoadConfig loads configuration from a file, the given .env files and environment variables.
// Missing files are skipped; variables already set in the environment win over .env files.
func LoadConfig(configPath string, envFiles ...string) (*Config, error) {
	// Load default config with sane defaults
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Parse YAML into Config structure
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.App.Name = "SmartSecretaria"
	config.App.Version = "1.0.0"

	// API client defaults
	config.API.BaseURL = "http://127.0.0.1:8000/api"
	config.API.Timeout = "10s"
	config.API.LoginPath = "/login"

	config.Validation.Mode = "relaxed"

	// Session storage defaults
	config.Storage.Driver = StorageFile
	config.Storage.Path = defaultSessionPath()
	config.Storage.RedisAddr = "localhost:6379"
	config.Storage.Prefix = "secretaria:"
	config.Storage.AccessTokenKey = "accessToken"
	config.Storage.RefreshTokenKey = "refreshToken"
	config.Storage.AuthenticatedKey = "isAuthenticated"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "text"

	// Development API defaults
	config.MockAPI.Port = "8000"
	config.MockAPI.Mode = "development"
	config.MockAPI.PathPrefix = "/api"
	config.MockAPI.ValidationMode = "strict"
	config.MockAPI.MediaPath = "media"
	config.MockAPI.Seed = true
	config.MockAPI.Username = "admin"
	config.MockAPI.Password = "admin123"
	config.MockAPI.JWT.AccessTokenExpiration = "5m"
	config.MockAPI.JWT.RefreshTokenExpiration = "24h"
	config.MockAPI.JWT.Issuer = "secretaria-mockapi"
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".secretaria-session.json"
	}
	return dir + string(os.PathSeparator) + "secretaria" + string(os.PathSeparator) + "session.json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	// Recursively process the config structure and look for env tags
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if _, err := validation.ParsePolicy(config.Validation.Mode); err != nil {
		return fmt.Errorf("validation mode: %w", err)
	}
	if _, err := validation.ParsePolicy(config.MockAPI.ValidationMode); err != nil {
		return fmt.Errorf("mockapi validation mode: %w", err)
	}

	u, err := url.Parse(config.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", config.API.BaseURL)
	}

	if _, err := time.ParseDuration(config.API.Timeout); err != nil {
		return fmt.Errorf("invalid API timeout format: %w", err)
	}

	switch config.Storage.Driver {
	case StorageFile:
		if config.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the file driver")
		}
	case StorageRedis:
		if config.Storage.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the redis driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	// Validate JWT expiration formats
	if _, err := time.ParseDuration(config.MockAPI.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}
	if _, err := time.ParseDuration(config.MockAPI.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	return nil
}

// ValidateMockAPI checks the settings only the development API needs
func (c *Config) ValidateMockAPI() error {
	if c.MockAPI.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if _, err := strconv.Atoi(c.MockAPI.Port); err != nil {
		return fmt.Errorf("invalid mockapi port %q", c.MockAPI.Port)
	}
	return nil
}

// Policy returns the client validation policy
func (c *Config) Policy() validation.Policy {
	p, _ := validation.ParsePolicy(c.Validation.Mode)
	return p
}

// MockAPIPolicy returns the validation policy of the development API
func (c *Config) MockAPIPolicy() validation.Policy {
	p, _ := validation.ParsePolicy(c.MockAPI.ValidationMode)
	return p
}

// APITimeout returns the request timeout of the API client
func (c *Config) APITimeout() time.Duration {
	return helpers.ParseDuration(c.API.Timeout, 10*time.Second)
}

// MockAPIPublicURL is the URL the development API is reachable under
func (c *Config) MockAPIPublicURL() string {
	if c.MockAPI.PublicURL != "" {
		return strings.TrimRight(c.MockAPI.PublicURL, "/")
	}
	return "http://localhost:" + c.MockAPI.Port
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
