package command

import (
	"fmt"
	"strings"
)

// ResponseFormatter renders plain-text listings that read well on a
// terminal and survive any line encoding.
type ResponseFormatter struct {
	width int
}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{width: 16}
}

func (f *ResponseFormatter) Heading(title string) []string {
	return []string{title, strings.Repeat("-", len(title))}
}

func (f *ResponseFormatter) Label(label, value string) string {
	return fmt.Sprintf("%s: %s", label, value)
}

// Entry renders one command as "names  description".
func (f *ResponseFormatter) Entry(cmd *Command) string {
	return fmt.Sprintf("%-*s %s", f.width, strings.Join(cmd.Names, ", "), cmd.Description)
}

// Listing renders a heading followed by one entry per command.
func (f *ResponseFormatter) Listing(title string, cmds []*Command) []string {
	lines := f.Heading(title)
	for _, cmd := range cmds {
		lines = append(lines, f.Entry(cmd))
	}
	return lines
}

func (f *ResponseFormatter) List(items []string) []string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return lines
}

func (f *ResponseFormatter) Tip(text string) string {
	return "Tip: " + text
}
