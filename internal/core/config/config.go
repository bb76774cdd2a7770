package config

import (
	"time"

	"github.com/vietddude/fintrack/internal/core/gate"
	redisclient "github.com/vietddude/fintrack/internal/infra/redis"
	"github.com/vietddude/fintrack/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Database postgres.Config    `yaml:"database"`
	Redis    redisclient.Config `yaml:"redis"`
	Gate     GateConfig         `yaml:"gate"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP and gRPC server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	GRPCPort        int           `yaml:"grpc_port"` // 0 disables the gRPC health service
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GateConfig is the startup retry budget plus probe tuning.
type GateConfig struct {
	gate.Config `yaml:",inline"`

	// A database that does not exist yet is usually still being created by
	// the container entrypoint.
	TreatMissingDBAsTransient bool `yaml:"treat_missing_db_as_transient"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
