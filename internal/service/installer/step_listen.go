package installer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/gsb/internal/service/ui"
)

// PortStep asks for the telnet port. Empty keeps the default.
type PortStep struct {
	input textinput.Model
	err   error
}

func NewPortStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 5
	ti.Width = 10
	ti.Placeholder = "4000"

	return &PortStep{input: ti}
}

func (s *PortStep) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, next)
}

func (s *PortStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !state.App.EnableTelnet {
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		value := strings.TrimSpace(s.input.Value())
		if value == "" {
			return nil, nil
		}
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			s.err = fmt.Errorf("invalid port %q", value)
			return s, nil
		}
		state.App.Port = port
		return nil, nil
	}
	return s, cmd
}

func (s *PortStep) View(state *InstallState) string {
	view := "Enter the telnet port:\n\n" + s.input.View() + "\n\n"
	if s.err != nil {
		view += ui.ErrorStyle.Render(s.err.Error()) + "\n\n"
	}
	return view + "(press enter to confirm)\n"
}

// EncodingStep picks the telnet line encoding.
type EncodingStep struct {
	list list.Model
}

var encodings = []item{
	{id: "utf-8", title: "UTF-8", desc: "Modern clients"},
	{id: "windows-1252", title: "Windows-1252", desc: "Western European, also used for latin1"},
	{id: "iso-8859-2", title: "ISO-8859-2", desc: "Central European"},
	{id: "koi8-r", title: "KOI8-R", desc: "Cyrillic"},
	{id: "gbk", title: "GBK", desc: "Simplified Chinese"},
	{id: "shift_jis", title: "Shift JIS", desc: "Japanese"},
}

func NewEncodingStep() Step {
	items := make([]list.Item, 0, len(encodings))
	for _, e := range encodings {
		items = append(items, e)
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select the telnet encoding"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.HeaderStyle

	return &EncodingStep{list: l}
}

func (s *EncodingStep) Init() tea.Cmd {
	return next
}

func (s *EncodingStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !state.App.EnableTelnet {
		return nil, nil
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		wasFiltering := s.list.FilterState() == list.Filtering
		s.list, cmd = s.list.Update(msg)
		if wasFiltering || s.list.FilterState() == list.Filtering {
			return s, cmd
		}
		if i, ok := s.list.SelectedItem().(item); ok {
			state.App.Encoding = i.id
			return nil, nil
		}
		return s, cmd
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *EncodingStep) View(state *InstallState) string {
	return s.list.View()
}
