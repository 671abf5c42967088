package core

import "errors"

// ErrContinue is returned by a command handler that wants the next overload
// registered under the same name to be tried, as if it had not matched.
var ErrContinue = errors.New("continue with next command")

// Caller is the per-invocation request context handed to permissions,
// handlers and hooks. It is built fresh for every line or event and is never
// kept after the call returns.
type Caller struct {
	// Conn is the connection that caused the call. Nil for server-wide
	// events such as start and stop.
	Conn Connection
	// Text is the full line. Event callers carry no line.
	Text  string
	Event bool

	// Command and ArgsStr are the line split on the parser's separator.
	Command string
	ArgsStr string

	// Args and Kwargs hold the positional and named captures of the
	// command's argument pattern.
	Args   []string
	Kwargs map[string]string

	// Err is set when the handler failed.
	Err error
}

func NewCaller(conn Connection, text string) *Caller {
	return &Caller{
		Conn:   conn,
		Text:   text,
		Kwargs: make(map[string]string),
	}
}

func NewEventCaller(conn Connection) *Caller {
	return &Caller{
		Conn:   conn,
		Event:  true,
		Kwargs: make(map[string]string),
	}
}

// Continue returns ErrContinue: `return c.Continue()`.
func (c *Caller) Continue() error {
	return ErrContinue
}

// Send notifies the caller's connection, if any.
func (c *Caller) Send(format string, args ...any) {
	if c.Conn != nil {
		c.Conn.Send(format, args...)
	}
}

// Arg returns the named capture, falling back to def when it is absent or empty.
func (c *Caller) Arg(name, def string) string {
	if v, ok := c.Kwargs[name]; ok && v != "" {
		return v
	}
	return def
}
