package installer

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/gsb/internal/service/ui"
)

// FinalizationStep shows the collected settings and waits for confirmation.
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return nil
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		return nil, nil
	}
	return s, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("Summary") + "\n")
	for _, line := range state.Summary() {
		b.WriteString(ui.ItemStyle.Render(line) + "\n")
	}
	b.WriteString("\n(press enter to save, ctrl+c to quit)\n")
	return b.String()
}
