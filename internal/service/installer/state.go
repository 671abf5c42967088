package installer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sandevgo/gsb/internal/config"
)

// InstallState collects the answers. Zero fields keep their envDefault.
type InstallState struct {
	RuntimePath string

	App      config.AppConfig
	Telegram config.TelegramConfig
}

func NewInstallState(runtimePath string) *InstallState {
	return &InstallState{
		RuntimePath: runtimePath,
		App: config.AppConfig{
			EnableTelnet: true,
		},
	}
}

func (s *InstallState) EnvPath() string {
	return filepath.Join(s.RuntimePath, ".env")
}

// Summary lists the settings that will be written.
func (s *InstallState) Summary() []string {
	var transports []string
	if s.App.EnableTelnet {
		transports = append(transports, "telnet")
	}
	if s.App.EnableTelegram {
		transports = append(transports, "telegram")
	}
	if s.App.EnableConsole {
		transports = append(transports, "console")
	}

	lines := []string{
		fmt.Sprintf("Runtime:    %s", s.RuntimePath),
		fmt.Sprintf("Transports: %s", strings.Join(transports, ", ")),
	}
	if s.App.EnableTelnet {
		lines = append(lines,
			fmt.Sprintf("Port:       %s", orDefault(portString(s.App.Port), "4000")),
			fmt.Sprintf("Encoding:   %s", orDefault(s.App.Encoding, "utf-8")),
		)
	}
	lines = append(lines, fmt.Sprintf("Admins:     %s", orDefault(strings.Join(s.App.AdminHosts, ", "), "127.0.0.1, console")))
	return lines
}

func portString(port int) string {
	if port == 0 {
		return ""
	}
	return fmt.Sprint(port)
}

func orDefault(v, def string) string {
	if v == "" {
		return def + " (default)"
	}
	return v
}
