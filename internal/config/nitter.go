package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/rtbot/internal/core"
)

type NitterConfig struct {
	Instance string   `env:"NITTER_INSTANCE,required,notEmpty"`
	Accounts []string `env:"NITTER_ACCOUNTS,required,notEmpty" envSeparator:","`
}

func NewNitterConfig() (*NitterConfig, error) {
	c := &NitterConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	return c, nil
}
