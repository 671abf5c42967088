package config

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strconv"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/gsb/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"GSB_RUNTIME_PATH" envDefault:".gsb"`

	// Listener
	Interface string `env:"GSB_INTERFACE" envDefault:"0.0.0.0"`
	Port      int    `env:"GSB_PORT" envDefault:"4000"`
	Encoding  string `env:"GSB_ENCODING" envDefault:"utf-8"`

	// Transport Flags
	EnableTelnet   bool `env:"GSB_ENABLE_TELNET" envDefault:"true"`
	EnableTelegram bool `env:"GSB_ENABLE_TELEGRAM" envDefault:"false"`
	EnableConsole  bool `env:"GSB_ENABLE_CONSOLE" envDefault:"false"`

	// Dispatch
	AdminHosts       []string `env:"GSB_ADMIN_HOSTS" envDefault:"127.0.0.1,console" envSeparator:","`
	Welcome          string   `env:"GSB_WELCOME" envDefault:"Welcome to gsb. Type help for a list of commands."`
	CommandSeparator string   `env:"GSB_COMMAND_SEPARATOR" envDefault:" "`
}

// LoadAppConfig reads AppConfig from the environment.
func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.Port < 0 || c.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", c.Port)
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "gsb.db")
}

func (c AppConfig) GetWordListPath() string {
	return filepath.Join(c.RuntimePath, "words.txt")
}

func (c AppConfig) GetHistoryPath() string {
	return filepath.Join(c.RuntimePath, "console_history")
}

func (c AppConfig) GetListenAddress() string {
	return net.JoinHostPort(c.Interface, strconv.Itoa(c.Port))
}

func (c AppConfig) GetEncoding() string {
	return c.Encoding
}

func (c AppConfig) GetCommandSeparator() string {
	return c.CommandSeparator
}

func (c AppConfig) GetWelcome() string {
	return c.Welcome
}

func (c AppConfig) GetAdminHosts() []string {
	return c.AdminHosts
}

func (c AppConfig) IsTelnetEnabled() bool {
	return c.EnableTelnet
}

func (c AppConfig) IsTelegramEnabled() bool {
	return c.EnableTelegram
}

func (c AppConfig) IsConsoleEnabled() bool {
	return c.EnableConsole
}
