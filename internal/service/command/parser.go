package command

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/pkg/log"
)

const (
	DefaultSeparator = " "

	MsgUnrecognized = "I don't understand that."
	MsgError        = "There was an error with your command."
)

// ErrPanic wraps a value recovered from a panicking handler.
var ErrPanic = errors.New("command panicked")

type substitution struct {
	short rune
	name  string
}

// Parser maps command names to handlers and dispatches lines to them. The
// zero value is not usable; use NewParser.
type Parser struct {
	separator   string
	defaultArgs string

	commands map[string][]*Command
	order    []*Command
	subs     []substitution
	subIndex map[rune]string

	// PreCommand runs before dispatch. Returning false drops the line.
	PreCommand func(ctx context.Context, c *core.Caller) bool
	// PostCommand runs after dispatch with the number of matched commands.
	PostCommand func(ctx context.Context, c *core.Caller, matched int)
	// Unrecognized runs when no command matched the line.
	Unrecognized func(ctx context.Context, c *core.Caller)
	// OnError runs when a handler failed. c.Err holds the failure.
	OnError func(ctx context.Context, c *core.Caller)
	// Attach and Detach observe the parser becoming or ceasing to be
	// the connection's dispatcher.
	Attach func(ctx context.Context, conn core.Connection, previous core.Dispatcher)
	Detach func(ctx context.Context, conn core.Connection, next core.Dispatcher)
}

type Option func(*Parser)

// WithSeparator sets the string between a command name and its arguments.
func WithSeparator(sep string) Option {
	return func(p *Parser) {
		if sep != "" {
			p.separator = sep
		}
	}
}

// WithDefaultArgs sets the argument pattern used by commands that declare none.
func WithDefaultArgs(pattern string) Option {
	return func(p *Parser) {
		p.defaultArgs = pattern
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		separator: DefaultSeparator,
		commands:  make(map[string][]*Command),
		subIndex:  make(map[rune]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Separator() string {
	return p.separator
}

// Register adds a command under each of its names.
func (p *Parser) Register(spec Spec) (*Command, error) {
	cmd, err := newCommand(spec, p.defaultArgs)
	if err != nil {
		return nil, err
	}

	for _, name := range cmd.Names {
		p.commands[name] = append(p.commands[name], cmd)
	}
	p.order = append(p.order, cmd)
	return cmd, nil
}

// MustRegister is Register for startup wiring, where a bad spec is a bug.
func (p *Parser) MustRegister(spec Spec) *Command {
	cmd, err := p.Register(spec)
	if err != nil {
		panic(err)
	}
	return cmd
}

// RegisterAll registers spec on every parser.
func RegisterAll(parsers []*Parser, spec Spec) ([]*Command, error) {
	cmds := make([]*Command, 0, len(parsers))
	for _, p := range parsers {
		cmd, err := p.Register(spec)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Substitute makes a line starting with short behave as "name <rest>".
func (p *Parser) Substitute(short rune, name string) {
	if _, ok := p.subIndex[short]; !ok {
		p.subs = append(p.subs, substitution{short: short, name: name})
	} else {
		for i := range p.subs {
			if p.subs[i].short == short {
				p.subs[i].name = name
			}
		}
	}
	p.subIndex[short] = name
}

// Commands returns every registered command once, in registration order.
func (p *Parser) Commands() []*Command {
	return append([]*Command(nil), p.order...)
}

// Lookup returns the commands registered under name.
func (p *Parser) Lookup(name string) []*Command {
	return append([]*Command(nil), p.commands[name]...)
}

func (p *Parser) split(line string) (string, string) {
	name, args, _ := strings.Cut(line, p.separator)
	return name, args
}

func (p *Parser) substitute(line string) string {
	if line == "" {
		return line
	}
	r, size := utf8.DecodeRuneInString(line)
	if name, ok := p.subIndex[r]; ok {
		return name + p.separator + line[size:]
	}
	return line
}

// HandleLine dispatches one line and returns the number of matched commands.
func (p *Parser) HandleLine(ctx context.Context, conn core.Connection, line string) int {
	line = p.substitute(line)
	c := core.NewCaller(conn, line)

	if p.PreCommand != nil && !p.PreCommand(ctx, c) {
		return 0
	}

	c.Command, c.ArgsStr = p.split(line)

	matched := 0
	stopped := false
	for _, cmd := range p.commands[c.Command] {
		if !cmd.Allows(c) {
			continue
		}

		if !cmd.match(c, c.ArgsStr) {
			if conn != nil {
				p.Explain(conn, cmd)
			}
			stopped = true
			break
		}

		matched++
		err := p.run(ctx, cmd, c)
		if errors.Is(err, core.ErrContinue) {
			continue
		}
		if err != nil {
			log.FromCtx(ctx).Warn().
				Err(err).
				Str("command", cmd.Name()).
				Str("line", line).
				Msg("Command failed")
			c.Err = err
			p.fail(ctx, c)
		}
		stopped = true
		break
	}

	if !stopped && matched == 0 {
		p.huh(ctx, c)
	}

	if p.PostCommand != nil {
		p.PostCommand(ctx, c, matched)
	}
	return matched
}

func (p *Parser) run(ctx context.Context, cmd *Command, c *core.Caller) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.FromCtx(ctx).Debug().Bytes("stack", debug.Stack()).Msg("Recovered handler panic")
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return cmd.Handler(ctx, c)
}

func (p *Parser) huh(ctx context.Context, c *core.Caller) {
	if p.Unrecognized != nil {
		p.Unrecognized(ctx, c)
		return
	}
	c.Send(MsgUnrecognized)
}

func (p *Parser) fail(ctx context.Context, c *core.Caller) {
	if p.OnError != nil {
		p.OnError(ctx, c)
		return
	}
	c.Send(MsgError)
}

// Explain sends the usage of cmd: its names, substitution shortcuts,
// description and help.
func (p *Parser) Explain(conn core.Connection, cmd *Command) {
	conn.Send("%s:", strings.Join(cmd.Names, " or "))
	for _, sub := range p.subs {
		for _, name := range cmd.Names {
			if sub.name == name {
				conn.Send(`Instead of typing "%s%s", you can type %s.`, sub.name, p.separator, string(sub.short))
				break
			}
		}
	}
	conn.Send(cmd.Description)
	conn.Send(cmd.Help)
}

func (p *Parser) OnAttach(ctx context.Context, conn core.Connection, previous core.Dispatcher) {
	if p.Attach != nil {
		p.Attach(ctx, conn, previous)
	}
}

func (p *Parser) OnDetach(ctx context.Context, conn core.Connection, next core.Dispatcher) {
	if p.Detach != nil {
		p.Detach(ctx, conn, next)
	}
}
