package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/pkg/conv"
)

const (
	WordListPath = "../configs/words.txt"
)

// GetWordListPath returns the bundled word list, skipping the test when it
// is missing.
func GetWordListPath(t *testing.T) string {
	_, filename, _, _ := runtime.Caller(0)
	testDir := filepath.Dir(filename)

	path := filepath.Join(testDir, WordListPath)
	if _, err := os.Stat(path); err != nil {
		t.Skipf("Word list not found at %s: %v", path, err)
	}
	return path
}

// LineWriter records outbound lines.
type LineWriter struct {
	mu     sync.Mutex
	lines  []string
	closed bool
}

func (w *LineWriter) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, line)
	return nil
}

func (w *LineWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *LineWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.lines...)
}

// Take returns the recorded lines and forgets them.
func (w *LineWriter) Take() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	lines := w.lines
	w.lines = nil
	return lines
}

func (w *LineWriter) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Session is a minimal core.Session for dispatcher tests.
type Session struct {
	Base    core.Dispatcher
	Checker core.SpellCheckerFactory
	Banned  map[string]bool
	Conns   []core.Connection
}

func (s *Session) Baseline() core.Dispatcher { return s.Base }

func (s *Session) IsBanned(_ context.Context, host string) bool { return s.Banned[host] }

func (s *Session) SpellChecker(*core.Caller) core.SpellCheckerFactory { return s.Checker }

func (s *Session) Connections() []core.Connection { return s.Conns }

func (s *Session) Broadcast(format string, args ...any) {
	for _, c := range s.Conns {
		c.Send(format, args...)
	}
}

func (s *Session) Disconnect(_ context.Context, conn core.Connection) {
	for i, c := range s.Conns {
		if c == conn {
			s.Conns = append(s.Conns[:i], s.Conns[i+1:]...)
			return
		}
	}
}

// Conn is an in-memory core.Connection that records what it is sent.
type Conn struct {
	LineWriter

	id         string
	host       string
	session    core.Session
	dispatcher core.Dispatcher
	values     map[string]any
}

func NewConn(id string, session core.Session) *Conn {
	if session == nil {
		session = &Session{}
	}
	return &Conn{
		id:      id,
		host:    "127.0.0.1",
		session: session,
		values:  make(map[string]any),
	}
}

func (c *Conn) ID() string   { return c.id }
func (c *Conn) Host() string { return c.host }
func (c *Conn) Port() int    { return 4000 }

func (c *Conn) SetHost(host string) { c.host = host }

func (c *Conn) Send(format string, args ...any) {
	_ = c.WriteLine(conv.Format(format, args...))
}

func (c *Conn) SendNamed(format string, values map[string]any) {
	_ = c.WriteLine(conv.FormatNamed(format, values))
}

func (c *Conn) Dispatcher() core.Dispatcher { return c.dispatcher }

func (c *Conn) SetDispatcher(ctx context.Context, d core.Dispatcher) {
	old := c.dispatcher
	if old != nil {
		old.OnDetach(ctx, c, d)
	}
	if d == nil {
		d = c.session.Baseline()
	}
	c.dispatcher = d
	if d != nil {
		d.OnAttach(ctx, c, old)
	}
}

// Line feeds one line to the current dispatcher.
func (c *Conn) Line(ctx context.Context, line string) int {
	if c.dispatcher == nil {
		panic(fmt.Sprintf("conn %s has no dispatcher", c.id))
	}
	return c.dispatcher.HandleLine(ctx, c, line)
}

func (c *Conn) Set(key string, value any) { c.values[key] = value }
func (c *Conn) Get(key string) any        { return c.values[key] }

func (c *Conn) Session() core.Session { return c.session }
