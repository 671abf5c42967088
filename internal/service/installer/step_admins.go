package installer

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/internal/service/ui"
)

// AdminsStep collects the hosts allowed to ban. Empty keeps the default.
type AdminsStep struct {
	input textinput.Model
}

func NewAdminsStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 40
	ti.Placeholder = "127.0.0.1," + core.ConsoleHost

	return &AdminsStep{input: ti}
}

func (s *AdminsStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *AdminsStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		state.App.AdminHosts = splitHosts(s.input.Value())
		return nil, nil
	}
	return s, cmd
}

func (s *AdminsStep) View(state *InstallState) string {
	hint := "Telegram chats connect as " + core.TelegramHostPref + "<chat id>."
	return "Enter the admin hosts, separated by commas:\n\n" +
		s.input.View() + "\n\n" +
		ui.HintStyle.Render(hint) + "\n\n" +
		"(press enter to confirm, leave empty for the default)\n"
}

func splitHosts(value string) []string {
	var hosts []string
	for _, h := range strings.Split(value, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
