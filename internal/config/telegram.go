package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/gsb/pkg/log"
)

type TelegramConfig struct {
	Token string `env:"GSB_TELEGRAM_TOKEN,required,notEmpty"`
}

func LoadTelegramConfig() (*TelegramConfig, error) {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c, err := LoadTelegramConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

func (c TelegramConfig) GetTelegramToken() string {
	return c.Token
}
