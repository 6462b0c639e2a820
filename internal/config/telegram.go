package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/rtbot/internal/core"
)

// TelegramConfig enables the optional run summary notification.
type TelegramConfig struct {
	Token  string `env:"NOTIFY_TELEGRAM_TOKEN" secret:"true"`
	ChatID int64  `env:"NOTIFY_TELEGRAM_CHAT_ID"`
}

func NewTelegramConfig() (*TelegramConfig, error) {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	if c.Token != "" && c.ChatID == 0 {
		return nil, fmt.Errorf("%w: NOTIFY_TELEGRAM_CHAT_ID is required with NOTIFY_TELEGRAM_TOKEN", core.ErrConfiguration)
	}
	return c, nil
}

func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatID != 0
}
