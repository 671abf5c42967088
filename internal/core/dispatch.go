package core

import "context"

// Dispatcher resolves lines for a connection. A connection has exactly one
// current Dispatcher: the session baseline parser or a temporary override
// (menu, reader, prompt).
type Dispatcher interface {
	// HandleLine processes one decoded line and returns the number of
	// commands that matched.
	HandleLine(ctx context.Context, conn Connection, line string) int
	// OnAttach runs after the dispatcher became current; previous is the
	// dispatcher it replaced (nil for a fresh connection).
	OnAttach(ctx context.Context, conn Connection, previous Dispatcher)
	// OnDetach runs before next replaces the dispatcher.
	OnDetach(ctx context.Context, conn Connection, next Dispatcher)
}

// Connection is one interactive session peer as seen by dispatchers.
type Connection interface {
	ID() string
	Host() string
	Port() int

	// Send writes one formatted line using printf-style positional args.
	Send(format string, args ...any)
	// SendNamed writes one line using "%(name)s" style substitutions.
	SendNamed(format string, values map[string]any)

	Dispatcher() Dispatcher
	// SetDispatcher swaps the current dispatcher, running detach on the
	// old one and attach on the new one. Nil falls back to the baseline.
	SetDispatcher(ctx context.Context, d Dispatcher)

	// Set and Get hold per-connection application values.
	Set(key string, value any)
	Get(key string) any

	Session() Session
	Close() error
}

// SpellCheckerFactory builds a spell-check flow for text. The flow calls
// resume with a caller whose Text is the corrected text when it is done.
type SpellCheckerFactory func(text string, resume func(ctx context.Context, c *Caller)) Dispatcher

// Session is the owner of all live connections.
type Session interface {
	Baseline() Dispatcher
	IsBanned(ctx context.Context, host string) bool
	SpellChecker(c *Caller) SpellCheckerFactory
	Connections() []Connection
	Broadcast(format string, args ...any)
	Disconnect(ctx context.Context, conn Connection)
}
