package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/fintrack/internal/core/gate"
	"github.com/vietddude/fintrack/internal/infra/storage/postgres"
)

// Default returns the configuration used when a file leaves a field out.
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: postgres.Config{
			Driver:   "pgx",
			MaxConns: 10,
			MinConns: 2,
		},
		Gate: GateConfig{
			Config:                    gate.DefaultConfig(),
			TreatMissingDBAsTransient: true,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Fields present in the document win,
// so an explicit "max_attempts: 0" is kept.
func Parse(data []byte) (*AppConfig, error) {
	cfg := Default()

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "pgx"
	}
	if cfg.Gate.Strategy == "" {
		cfg.Gate.Strategy = gate.StrategyConstant
	}

	if err := cfg.Gate.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gate config: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a configuration from DATABASE_URL and REDIS_URL when no
// config file is given.
func FromEnv() *AppConfig {
	cfg := Default()
	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.Redis.URL = os.Getenv("REDIS_URL")
	return cfg
}
