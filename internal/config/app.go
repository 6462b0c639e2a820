package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/log"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

type AppConfig struct {
	RuntimePath string

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Ledger storage
	LedgerBackend string `env:"LEDGER_BACKEND" envDefault:"sqlite"`
	LedgerPath    string `env:"LEDGER_PATH"`

	ServeInterval time.Duration `env:"SERVE_INTERVAL" envDefault:"15m"`
}

func NewAppConfig() (*AppConfig, error) {
	c := &AppConfig{RuntimePath: GetRuntimePath()}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c AppConfig) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: LOG_LEVEL %q is not one of debug, info, warn, error", core.ErrConfiguration, c.LogLevel)
	}
	switch c.LedgerBackend {
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("%w: LEDGER_BACKEND %q is not one of sqlite, json", core.ErrConfiguration, c.LedgerBackend)
	}
	if c.ServeInterval <= 0 {
		return fmt.Errorf("%w: SERVE_INTERVAL must be positive", core.ErrConfiguration)
	}
	return nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) Level() zerolog.Level {
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

// GetLedgerPath returns LEDGER_PATH or the backend's default file in the
// runtime directory.
func (c AppConfig) GetLedgerPath() string {
	if c.LedgerPath != "" {
		return c.LedgerPath
	}
	if c.LedgerBackend == BackendJSON {
		return filepath.Join(c.RuntimePath, "ledger.json")
	}
	return filepath.Join(c.RuntimePath, "ledger.db")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}
