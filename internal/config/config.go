package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Storage   StorageConfig   `yaml:"storage"`
	JWT       JWTConfig       `yaml:"jwt"`
	Logging   LoggingConfig   `yaml:"logging"`
	Meeting   MeetingConfig   `yaml:"meeting"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Port            string `yaml:"port" env:"SERVER_PORT"`
	Mode            string `yaml:"mode" env:"SERVER_MODE"`
	ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string `yaml:"url" env:"DATABASE_URL"`
	Host            string `yaml:"host" env:"DB_HOST"`
	Port            string `yaml:"port" env:"DB_PORT"`
	User            string `yaml:"user" env:"DB_USER"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	SeedDemoData    bool   `yaml:"seed_demo_data" env:"DB_SEED_DEMO_DATA"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGODB_URI"`
	Database string `yaml:"database" env:"MONGODB_DATABASE"`
}

// StorageConfig selects where exchange threads live.
type StorageConfig struct {
	MessageBackend string `yaml:"message_backend" env:"STORAGE_MESSAGE_BACKEND"`
}

type JWTConfig struct {
	Secret                 string `yaml:"secret" env:"JWT_SECRET"`
	AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
	RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
	Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// MeetingConfig controls meeting links and when they are joinable.
type MeetingConfig struct {
	LinkTemplate string `yaml:"link_template" env:"MEETING_LINK_TEMPLATE"`
	JoinLeadTime string `yaml:"join_lead_time" env:"MEETING_JOIN_LEAD_TIME"`
	JoinGrace    string `yaml:"join_grace" env:"MEETING_JOIN_GRACE"`
}

type RateLimitConfig struct {
	AuthPerMinute  int `yaml:"auth_per_minute" env:"RATE_LIMIT_AUTH_RPM"`
	WritePerMinute int `yaml:"write_per_minute" env:"RATE_LIMIT_WRITE_RPM"`
	Burst          int `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
}

const (
	MessageBackendPostgres = "postgres"
	MessageBackendMongo    = "mongo"
)

// LoadConfig loads configuration from a file and environment variables
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
	config.Server.Mode = "development"
	config.Server.ShutdownTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "skillswap"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.Mongo.Database = "skillswap"
	config.Storage.MessageBackend = MessageBackendPostgres

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "skillswap.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Meeting.LinkTemplate = "https://meet.google.com/new?hs=181&authuser=0&tf=0&nv=1&s=%s"
	config.Meeting.JoinLeadTime = "10m"
	config.Meeting.JoinGrace = "30m"

	config.RateLimit.AuthPerMinute = 10
	config.RateLimit.WritePerMinute = 120
	config.RateLimit.Burst = 5

	config.Telemetry.ServiceName = "skillswap-api"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database url or host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"database connection lifetime": config.Database.ConnMaxLifetime,
		"server shutdown timeout":      config.Server.ShutdownTimeout,
		"meeting join lead time":       config.Meeting.JoinLeadTime,
		"meeting join grace":           config.Meeting.JoinGrace,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch config.Storage.MessageBackend {
	case MessageBackendPostgres:
	case MessageBackendMongo:
		if config.Mongo.URI == "" {
			return fmt.Errorf("mongo uri is required when message backend is %q", MessageBackendMongo)
		}
	default:
		return fmt.Errorf("unknown message backend %q", config.Storage.MessageBackend)
	}

	if !strings.Contains(config.Meeting.LinkTemplate, "%s") {
		return fmt.Errorf("meeting link template must contain %%s")
	}

	return nil
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

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}
