package config

import (
	"flag"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	ServerAddr                 string        `env:"SERVER_ADDRESS" envDefault:"localhost:8080"`
	LogLevel                   string        `env:"LOG_LEVEL" envDefault:"info"`
	BackendAddress             string        `env:"BACKEND_ADDRESS" envDefault:"http://localhost:9090"`
	BackendRequestTimeoutSec   int           `env:"BACKEND_REQUEST_TIMEOUT_SEC" envDefault:"10"`
	BackendMaxRequestsPerSec   int           `env:"BACKEND_MAX_REQUESTS_PER_SEC" envDefault:"20"`
	BackendReadRetries         int           `env:"BACKEND_READ_RETRIES" envDefault:"2"`
	ContextTimeoutSec          int           `env:"CONTEXT_TIMEOUT_SEC" envDefault:"5"`
	TokenSecretKey             string        `env:"TOKEN_SECRET_KEY" envDefault:"change-me"`
	CatalogTTL                 time.Duration `env:"CATALOG_TTL" envDefault:"5m"`
	BalanceTTL                 time.Duration `env:"BALANCE_TTL" envDefault:"30s"`
	OrdersTTL                  time.Duration `env:"ORDERS_TTL" envDefault:"30s"`
	RoleTTL                    time.Duration `env:"ROLE_TTL" envDefault:"1m"`
	CacheCleanupInterval       time.Duration `env:"CACHE_CLEANUP_INTERVAL" envDefault:"5m"`
	SubmissionTimeoutSec       int           `env:"SUBMISSION_TIMEOUT_SEC" envDefault:"30"`
}

// Parse loads configuration from an optional .env file, environment
// variables, and command-line flags, in increasing order of precedence.
func Parse() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{}
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}

	flag.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address and port to run server")
	flag.StringVar(&cfg.LogLevel, "ll", cfg.LogLevel, "logging level")
	flag.StringVar(&cfg.BackendAddress, "b", cfg.BackendAddress, "panel backend address")
	flag.Parse()

	return cfg, nil
}
