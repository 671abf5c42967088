package installer

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/gsb/internal/service/ui"
)

var errNoTransport = errors.New("select at least one transport")

type transport struct {
	name    string
	desc    string
	enabled *bool
}

// TransportStep toggles the telnet, Telegram and console transports.
type TransportStep struct {
	cursor int
	err    error
}

func NewTransportStep() Step {
	return &TransportStep{}
}

func (s *TransportStep) Init() tea.Cmd {
	return nil
}

func transports(state *InstallState) []transport {
	return []transport{
		{"Telnet", "line-mode TCP listener", &state.App.EnableTelnet},
		{"Telegram", "bot chats become connections", &state.App.EnableTelegram},
		{"Console", "local readline session", &state.App.EnableConsole},
	}
}

func (s *TransportStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	choices := transports(state)

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(choices)-1 {
			s.cursor++
		}
	case " ", "x":
		t := choices[s.cursor]
		*t.enabled = !*t.enabled
		s.err = nil
	case "enter":
		for _, t := range choices {
			if *t.enabled {
				return nil, nil
			}
		}
		s.err = errNoTransport
	}
	return s, nil
}

func (s *TransportStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Select the transports to serve:\n\n")
	for i, t := range transports(state) {
		mark := " "
		if *t.enabled {
			mark = "x"
		}
		selectable(&b, s.cursor, i, fmt.Sprintf("[%s] %s %s", mark, t.name, ui.DescStyle.Render(t.desc)))
	}
	if s.err != nil {
		b.WriteString("\n" + ui.ErrorStyle.Render(s.err.Error()) + "\n")
	}
	b.WriteString("\n" + ui.HintStyle.Render("(space to toggle, enter to confirm, ctrl+c to quit)") + "\n")
	return b.String()
}
