package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/pkg/log"
)

const MsgBanned = "You have been banned from this server."

var ErrBanned = errors.New("host is banned")

// Hook observes a session event. The caller carries no line; its
// connection is nil for start and stop.
type Hook func(ctx context.Context, c *core.Caller)

// SpellCheckerProvider returns a spell checker for the caller, or nil.
type SpellCheckerProvider func(c *core.Caller) core.SpellCheckerFactory

// Session owns the live connections and runs every line, connect and
// disconnect under one dispatch lock, so handlers never interleave.
type Session struct {
	baseline core.Dispatcher
	bans     core.BanRepository
	spell    SpellCheckerProvider

	dispatchMu sync.Mutex
	startOnce  sync.Once

	mu    sync.RWMutex
	conns []*Conn

	OnConnect    Hook
	OnDisconnect Hook
	OnStart      Hook
	OnStop       Hook
}

type Option func(*Session)

func WithBans(repo core.BanRepository) Option {
	return func(s *Session) {
		s.bans = repo
	}
}

func WithSpellChecker(p SpellCheckerProvider) Option {
	return func(s *Session) {
		s.spell = p
	}
}

func New(baseline core.Dispatcher, opts ...Option) *Session {
	s := &Session{baseline: baseline}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type dispatchKey struct{}

// dispatch runs f holding the dispatch lock. Calls made from inside a
// handler already hold it and run directly.
func (s *Session) dispatch(ctx context.Context, f func(ctx context.Context)) {
	if held, _ := ctx.Value(dispatchKey{}).(bool); held {
		f(ctx)
		return
	}
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	f(context.WithValue(ctx, dispatchKey{}, true))
}

func (s *Session) Baseline() core.Dispatcher {
	return s.baseline
}

// Start runs the start hook. Accept runs it too, so the hook fires once and
// before the first connection.
func (s *Session) Start(ctx context.Context) error {
	s.start(ctx)
	return nil
}

func (s *Session) start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.dispatch(ctx, func(ctx context.Context) {
			if s.OnStart != nil {
				s.OnStart(ctx, core.NewEventCaller(nil))
			}
		})
	})
}

// Shutdown disconnects every connection and runs the stop hook.
func (s *Session) Shutdown(ctx context.Context) error {
	for _, c := range s.Connections() {
		s.Disconnect(ctx, c)
	}
	s.dispatch(ctx, func(ctx context.Context) {
		if s.OnStop != nil {
			s.OnStop(ctx, core.NewEventCaller(nil))
		}
	})
	return nil
}

// Accept registers a new connection and attaches the baseline dispatcher.
func (s *Session) Accept(ctx context.Context, host string, port int, w LineWriter) (*Conn, error) {
	s.start(ctx)
	if s.IsBanned(ctx, host) {
		return nil, fmt.Errorf("%s: %w", host, ErrBanned)
	}

	c := newConn(ctx, uuid.NewString(), host, port, w, s)

	s.mu.Lock()
	s.conns = append(s.conns, c)
	s.mu.Unlock()

	ctx = log.WithConn(ctx, c.id, host, port)
	log.FromCtx(ctx).Info().Msg("Connection accepted")

	s.dispatch(ctx, func(ctx context.Context) {
		c.SetDispatcher(ctx, s.baseline)
		if s.OnConnect != nil {
			s.OnConnect(ctx, core.NewEventCaller(c))
		}
	})
	return c, nil
}

// HandleLine passes one inbound line to the connection's dispatcher and
// returns the number of commands it matched.
func (s *Session) HandleLine(ctx context.Context, c *Conn, line string) int {
	if c.IsClosed() {
		return 0
	}
	ctx = log.WithConn(ctx, c.id, c.host, c.port)

	matched := 0
	s.dispatch(ctx, func(ctx context.Context) {
		d := c.Dispatcher()
		if d == nil {
			d = s.baseline
		}
		if d == nil {
			return
		}
		matched = d.HandleLine(ctx, c, line)
		log.FromCtx(ctx).Debug().Str("line", line).Int("matched", matched).Msg("Line handled")
	})
	return matched
}

// Disconnect forgets conn, runs the disconnect hook and closes it. It is
// safe to call more than once.
func (s *Session) Disconnect(ctx context.Context, conn core.Connection) {
	c := s.remove(conn.ID())
	if c == nil {
		return
	}

	ctx = log.WithConn(ctx, c.id, c.host, c.port)
	s.dispatch(ctx, func(ctx context.Context) {
		if s.OnDisconnect != nil {
			s.OnDisconnect(ctx, core.NewEventCaller(c))
		}
	})
	if err := c.Close(); err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("Close failed")
	}
	log.FromCtx(ctx).Info().Msg("Connection closed")
}

func (s *Session) remove(id string) *Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.conns {
		if c.id == id {
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			return c
		}
	}
	return nil
}

// Connections returns a snapshot of the live connections in connect order.
func (s *Session) Connections() []core.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Connection, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	return out
}

func (s *Session) Lookup(id string) (*Conn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.conns {
		if c.id == id {
			return c, true
		}
	}
	return nil, false
}

// Broadcast sends a message to every live connection.
func (s *Session) Broadcast(format string, args ...any) {
	for _, c := range s.Connections() {
		c.Send(format, args...)
	}
}

// BroadcastNamed is Broadcast with "%(name)s" style substitutions.
func (s *Session) BroadcastNamed(format string, values map[string]any) {
	for _, c := range s.Connections() {
		c.SendNamed(format, values)
	}
}

func (s *Session) SpellChecker(c *core.Caller) core.SpellCheckerFactory {
	if s.spell == nil {
		return nil
	}
	return s.spell(c)
}

// IsBanned reports whether host may not connect. Lookup failures allow the host.
func (s *Session) IsBanned(ctx context.Context, host string) bool {
	if s.bans == nil {
		return false
	}
	banned, err := s.bans.IsBanned(ctx, host)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("host", host).Msg("Ban lookup failed")
		return false
	}
	return banned
}

// Ban stores a ban for host and disconnects its live connections.
func (s *Session) Ban(ctx context.Context, host, reason string) (int, error) {
	if s.bans == nil {
		return 0, errors.New("bans are not configured")
	}
	if err := s.bans.Ban(ctx, host, reason); err != nil {
		return 0, fmt.Errorf("failed to ban %s: %w", host, err)
	}

	kicked := 0
	for _, c := range s.Connections() {
		if c.Host() != host {
			continue
		}
		c.Send(MsgBanned)
		s.Disconnect(ctx, c)
		kicked++
	}
	log.FromCtx(ctx).Info().Str("host", host).Int("kicked", kicked).Msg("Host banned")
	return kicked, nil
}

// Unban reports whether host was banned.
func (s *Session) Unban(ctx context.Context, host string) (bool, error) {
	if s.bans == nil {
		return false, errors.New("bans are not configured")
	}
	ok, err := s.bans.Unban(ctx, host)
	if err != nil {
		return false, fmt.Errorf("failed to unban %s: %w", host, err)
	}
	return ok, nil
}

func (s *Session) Bans(ctx context.Context) ([]core.Ban, error) {
	if s.bans == nil {
		return nil, nil
	}
	return s.bans.List(ctx)
}
