package intercept

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandevgo/gsb/internal/core"
)

const (
	DefaultMenuTitle = "Select an item:"

	MsgInvalidSelection = "Invalid selection."
	MsgMultipleMatches  = "That matched multiple items:"
)

type MenuItem struct {
	Label  string
	Action func(ctx context.Context, c *core.Caller)
	// Index is the 1-based position shown to the user.
	Index int
}

func (it *MenuItem) String() string {
	return fmt.Sprintf("[%d] %s", it.Index, it.Label)
}

// MenuLabel is a heading shown after an item, or above all items when After is nil.
type MenuLabel struct {
	Text  string
	After *MenuItem
}

// Menu offers numbered items and runs the action of the one selected by
// number, "$" for the last, or an unambiguous prefix of its label.
type Menu struct {
	*Intercept

	Title  string
	Items  []*MenuItem
	Labels []*MenuLabel
	Prompt Text

	// Persistent menus stay attached after an invalid selection.
	Persistent bool
	// Recursive menus leave the next dispatcher to the selected action.
	Recursive bool

	NoMatches       HandleFunc
	MultipleMatches func(ctx context.Context, c *core.Caller, matches []*MenuItem)
}

func NewMenu(title string) *Menu {
	if title == "" {
		title = DefaultMenuTitle
	}
	m := &Menu{Title: title}
	m.Intercept = New(m.render, m.handle)
	return m
}

func (m *Menu) AddItem(label string, action func(ctx context.Context, c *core.Caller)) *MenuItem {
	it := &MenuItem{Label: label, Action: action}
	m.Items = append(m.Items, it)
	m.reindex()
	return it
}

func (m *Menu) AddLabel(text string, after *MenuItem) *MenuLabel {
	l := &MenuLabel{Text: text, After: after}
	m.Labels = append(m.Labels, l)
	return l
}

// Clear removes every item and label.
func (m *Menu) Clear() {
	m.Items = nil
	m.Labels = nil
}

func (m *Menu) reindex() {
	for i, it := range m.Items {
		it.Index = i + 1
	}
}

func (m *Menu) prompt() Text {
	return m.Prompt.or(Literal(fmt.Sprintf("Type a number or %s to abort.", m.AbortToken)))
}

func (m *Menu) render(ctx context.Context, conn core.Connection) {
	conn.Send(m.Title)
	m.SendItems(conn, m.Items)
	m.prompt().Send(ctx, core.NewEventCaller(conn))
}

// SendItems writes items with their labels.
func (m *Menu) SendItems(conn core.Connection, items []*MenuItem) {
	for _, l := range m.Labels {
		if l.After == nil {
			conn.Send(l.Text)
		}
	}
	for _, it := range items {
		conn.Send(it.String())
		for _, l := range m.Labels {
			if l.After == it {
				conn.Send(l.Text)
			}
		}
	}
}

func (m *Menu) handle(ctx context.Context, c *core.Caller) {
	text := strings.ToLower(strings.TrimSpace(c.Text))
	if text == "" {
		if m.Persistent {
			m.Render(ctx, c.Conn)
		}
		return
	}

	matches := m.Match(text)
	switch len(matches) {
	case 0:
		m.noMatches(ctx, c)
		if m.Persistent {
			m.Render(ctx, c.Conn)
		}
	case 1:
		if !m.Recursive {
			m.Restore(ctx, c.Conn)
		}
		if action := matches[0].Action; action != nil {
			action(ctx, c)
		}
	default:
		m.multipleMatches(ctx, c, matches)
		if m.Persistent {
			m.Render(ctx, c.Conn)
		}
	}
}

// Match returns the items selected by text, which must already be lower case.
func (m *Menu) Match(text string) []*MenuItem {
	if len(m.Items) == 0 {
		return nil
	}
	if text == "$" {
		return m.Items[len(m.Items)-1:]
	}

	if n, err := strconv.Atoi(text); err == nil {
		if n > 0 {
			n--
		} else if n < 0 {
			n += len(m.Items)
		}
		if n >= 0 && n < len(m.Items) {
			return m.Items[n : n+1]
		}
	}

	var matches []*MenuItem
	for _, it := range m.Items {
		if strings.HasPrefix(strings.ToLower(it.Label), text) {
			matches = append(matches, it)
		}
	}
	return matches
}

func (m *Menu) noMatches(ctx context.Context, c *core.Caller) {
	if m.NoMatches != nil {
		m.NoMatches(ctx, c)
		return
	}
	c.Send(MsgInvalidSelection)
	if !m.Persistent {
		m.Restore(ctx, c.Conn)
	}
}

func (m *Menu) multipleMatches(ctx context.Context, c *core.Caller, matches []*MenuItem) {
	if m.MultipleMatches != nil {
		m.MultipleMatches(ctx, c, matches)
		return
	}
	if c.Conn == nil {
		return
	}
	c.Send(MsgMultipleMatches)
	m.SendItems(c.Conn, matches)
	m.prompt().Send(ctx, c)
}
