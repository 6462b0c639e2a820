package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/rtbot/internal/core"
)

// XConfig holds the X API credentials. Either the four OAuth 1.0a values or
// a user-context OAuth 2.0 bearer token must be present.
type XConfig struct {
	APIKey            string `env:"API_KEY" secret:"true"`
	APISecret         string `env:"API_SECRET" secret:"true"`
	AccessToken       string `env:"ACCESS_TOKEN" secret:"true"`
	AccessTokenSecret string `env:"ACCESS_TOKEN_SECRET" secret:"true"`
	BearerToken       string `env:"BEARER_TOKEN" secret:"true"`

	BaseURL string `env:"X_API_BASE_URL" envDefault:"https://api.x.com/2"`
}

func NewXConfig() (*XConfig, error) {
	c := &XConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c XConfig) HasOAuth1() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

func (c XConfig) HasBearer() bool {
	return c.BearerToken != ""
}

func (c XConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: X_API_BASE_URL is empty", core.ErrConfiguration)
	}
	if !c.HasOAuth1() && !c.HasBearer() {
		return fmt.Errorf("%w: set API_KEY, API_SECRET, ACCESS_TOKEN and ACCESS_TOKEN_SECRET, or BEARER_TOKEN", core.ErrConfiguration)
	}
	return nil
}
