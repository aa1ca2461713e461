package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
)

const (
	configDirPathEnv     = "OGMIOS_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."
	databaseURLEnv       = "OGMIOS_DATABASE_URL"
)

// Config represents the overall application configuration
type Config struct {
	WebsocketURL string `env:"OGMIOS_WS_URL" env-default:"ws://localhost:1337" validate:"required,url"`
	HTTPURL      string `env:"OGMIOS_HTTP_URL" env-default:"http://localhost:1337" validate:"required,url"`

	// CallTimeout bounds every command issued by the CLI
	CallTimeout      time.Duration `env:"OGMIOS_CALL_TIMEOUT" env-default:"30s" validate:"gt=0"`
	HandshakeTimeout time.Duration `env:"OGMIOS_HANDSHAKE_TIMEOUT" env-default:"5s" validate:"gte=0"`
	PingInterval     time.Duration `env:"OGMIOS_PING_INTERVAL" env-default:"30s" validate:"gte=0"`

	// Pending buffer bounds; a negative value disables the bound
	PendingTTL time.Duration `env:"OGMIOS_PENDING_TTL" env-default:"5m"`
	MaxPending int           `env:"OGMIOS_MAX_PENDING" env-default:"1024"`

	RequestsPerSecond  float64       `env:"OGMIOS_HTTP_RATE_LIMIT" env-default:"0" validate:"gte=0"`
	Burst              int           `env:"OGMIOS_HTTP_BURST" env-default:"1" validate:"gte=1"`
	BreakerMaxFailures uint32        `env:"OGMIOS_HTTP_BREAKER_MAX_FAILURES" env-default:"5"`
	BreakerTimeout     time.Duration `env:"OGMIOS_HTTP_BREAKER_TIMEOUT" env-default:"30s" validate:"gte=0"`

	MetricsListenAddr string `env:"OGMIOS_METRICS_LISTEN_ADDR" env-default:":4242"`

	Log log.Config
	DB  DatabaseConfig
}

// LoadConfig builds configuration from environment variables, after loading
// the .env file found in OGMIOS_CONFIG_DIR_PATH.
func LoadConfig(logger log.Logger) (*Config, error) {
	logger = logger.WithName("config")

	configDirPath := os.Getenv(configDirPathEnv)
	if configDirPath == "" {
		configDirPath = defaultConfigDirPath
	}

	configDotEnvPath := filepath.Join(configDirPath, ".env")
	logger.Debug("loading .env file", "path", configDotEnvPath)
	if err := godotenv.Load(configDotEnvPath); err != nil {
		logger.Debug(".env file not found", "path", configDotEnvPath)
	}

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	// If OGMIOS_DATABASE_URL is set it takes precedence over the individual
	// database variables.
	if dbURL := os.Getenv(databaseURLEnv); dbURL != "" {
		dbConf, err := ParseConnectionString(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connection string: %w", err)
		}
		config.DB = dbConf
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := log.ParseLevel(string(config.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Debug("configuration loaded", "ws", config.WebsocketURL, "http", config.HTTPURL, "dbDriver", config.DB.Driver)
	return &config, nil
}

func (c *Config) websocketConfig() jsonrpc.WebsocketConfig {
	cfg := jsonrpc.DefaultWebsocketConfig
	cfg.HandshakeTimeout = c.HandshakeTimeout
	cfg.PingInterval = c.PingInterval
	return cfg
}

func (c *Config) connConfig(observer jsonrpc.Observer) jsonrpc.ConnConfig {
	return jsonrpc.ConnConfig{
		PendingTTL: c.PendingTTL,
		MaxPending: c.MaxPending,
		Observer:   observer,
	}
}

func (c *Config) httpConfig() jsonrpc.HTTPConfig {
	return jsonrpc.HTTPConfig{
		Timeout:            c.CallTimeout,
		RequestsPerSecond:  c.RequestsPerSecond,
		Burst:              c.Burst,
		BreakerMaxFailures: c.BreakerMaxFailures,
		BreakerTimeout:     c.BreakerTimeout,
	}
}
