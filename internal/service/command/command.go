package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/sandevgo/gsb/internal/core"
)

const (
	DefaultDescription = "No description available."
	DefaultHelp        = "No help available."
)

var (
	ErrNoNames   = errors.New("command has no names")
	ErrNoHandler = errors.New("command has no handler")
)

// Handler runs a matched command. Returning core.ErrContinue hands the line
// to the next overload; any other error is a fault reported to the user.
type Handler func(ctx context.Context, c *core.Caller) error

// Spec describes a command to register.
type Spec struct {
	Names       []string
	Description string
	Help        string
	// Args is a regular expression matched against the text after the
	// command name. Empty means arguments are not parsed.
	Args    string
	Allowed Permission
	Handler Handler
}

// Command is a registered handler entry. It is not modified after Register.
type Command struct {
	Names       []string
	Description string
	Help        string
	Args        *regexp.Regexp
	Allowed     Permission
	Handler     Handler
}

func newCommand(spec Spec, defaultArgs string) (*Command, error) {
	if len(spec.Names) == 0 {
		return nil, ErrNoNames
	}
	if spec.Handler == nil {
		return nil, fmt.Errorf("%s: %w", spec.Names[0], ErrNoHandler)
	}

	cmd := &Command{
		Names:       append([]string(nil), spec.Names...),
		Description: spec.Description,
		Help:        spec.Help,
		Allowed:     spec.Allowed,
		Handler:     spec.Handler,
	}
	if cmd.Description == "" {
		cmd.Description = DefaultDescription
	}
	if cmd.Help == "" {
		cmd.Help = DefaultHelp
	}
	if cmd.Allowed == nil {
		cmd.Allowed = Anyone
	}

	pattern := spec.Args
	if pattern == "" {
		pattern = defaultArgs
	}
	if pattern != "" {
		// Arguments must match from their first character.
		re, err := regexp.Compile(`^(?:` + pattern + `)`)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid argument pattern: %w", spec.Names[0], err)
		}
		cmd.Args = re
	}

	return cmd, nil
}

// Allows reports whether c may run this command.
func (cmd *Command) Allows(c *core.Caller) bool {
	return cmd.Allowed(c)
}

// Name is the primary name.
func (cmd *Command) Name() string {
	return cmd.Names[0]
}

// match fills c's captures from args. It reports false when the pattern does not match.
func (cmd *Command) match(c *core.Caller, args string) bool {
	c.Args = nil
	c.Kwargs = make(map[string]string)
	if cmd.Args == nil {
		return true
	}

	m := cmd.Args.FindStringSubmatch(args)
	if m == nil {
		return false
	}

	c.Args = append([]string(nil), m[1:]...)
	for i, name := range cmd.Args.SubexpNames() {
		if i > 0 && name != "" {
			c.Kwargs[name] = m[i]
		}
	}
	return true
}
