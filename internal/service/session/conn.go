package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/pkg/conv"
	"github.com/sandevgo/gsb/pkg/log"
)

// LineWriter is the outbound half of a transport. WriteLine receives one
// line without a terminator.
type LineWriter interface {
	WriteLine(line string) error
	Close() error
}

// Conn is a live connection owned by a Session.
type Conn struct {
	id      string
	host    string
	port    int
	w       LineWriter
	session *Session
	logger  *zerolog.Logger

	// dispatcher is only touched under the session's dispatch lock.
	dispatcher core.Dispatcher

	mu     sync.Mutex
	values map[string]any

	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(ctx context.Context, id, host string, port int, w LineWriter, s *Session) *Conn {
	return &Conn{
		id:      id,
		host:    host,
		port:    port,
		w:       w,
		session: s,
		logger:  log.FromCtx(log.WithConn(ctx, id, host, port)),
		values:  make(map[string]any),
		closed:  make(chan struct{}),
	}
}

func (c *Conn) ID() string   { return c.id }
func (c *Conn) Host() string { return c.host }
func (c *Conn) Port() int    { return c.port }

func (c *Conn) Session() core.Session {
	return c.session
}

// Send writes a printf-style message. Embedded newlines become separate lines.
func (c *Conn) Send(format string, args ...any) {
	c.write(conv.Format(format, args...))
}

// SendNamed writes a message with %(name)s substitutions.
func (c *Conn) SendNamed(format string, values map[string]any) {
	c.write(conv.FormatNamed(format, values))
}

func (c *Conn) write(text string) {
	if c.IsClosed() {
		return
	}
	for _, line := range conv.Lines(text) {
		if err := c.w.WriteLine(line); err != nil {
			c.logger.Debug().Err(err).Msg("Write failed")
			return
		}
	}
}

func (c *Conn) Dispatcher() core.Dispatcher {
	return c.dispatcher
}

// SetDispatcher detaches the current dispatcher and attaches d, or the
// session baseline when d is nil.
func (c *Conn) SetDispatcher(ctx context.Context, d core.Dispatcher) {
	old := c.dispatcher
	if old != nil {
		old.OnDetach(ctx, c, d)
	}
	if d == nil {
		log.FromCtx(ctx).Warn().Str("conn", c.id).Msg("No dispatcher given, falling back to baseline")
		d = c.session.Baseline()
	}
	c.dispatcher = d
	if d != nil {
		d.OnAttach(ctx, c, old)
	}
}

func (c *Conn) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *Conn) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

// Close shuts the transport side. The transport then reports the
// disconnect to the session.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.w.Close()
	})
	return err
}

func (c *Conn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.closed
}
