package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/chzyer/readline"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/internal/service/session"
	"github.com/sandevgo/gsb/pkg/log"
)

// ReadLine attaches the local terminal to the session as one connection.
type ReadLine struct {
	session *session.Session
	rl      *readline.Instance
}

func NewReadLine(cfg core.AppConfig, s *session.Session) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.GetRuntimePath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.GetHistoryPath()), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     cfg.GetHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "@abort",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		session: s,
		rl:      rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	conn, err := r.session.Accept(ctx, core.ConsoleHost, 0, newConsoleWriter(r.rl.Stdout()))
	if err != nil {
		return err
	}
	defer r.session.Disconnect(ctx, conn)

	logger.Info().Msg("Console attached")
	return r.loop(ctx, conn)
}

func (r *ReadLine) loop(ctx context.Context, conn *session.Conn) error {
	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return nil
		case <-conn.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		r.session.HandleLine(ctx, conn, line)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

// consoleWriter prints session lines on the terminal.
type consoleWriter struct {
	mu     sync.Mutex
	out    io.Writer
	closed bool
}

func newConsoleWriter(out io.Writer) *consoleWriter {
	return &consoleWriter{out: out}
}

func (w *consoleWriter) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return io.ErrClosedPipe
	}
	_, err := fmt.Fprintln(w.out, line)
	return err
}

// Close detaches the console; the terminal itself stays open.
func (w *consoleWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}
