package telnet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"

	"github.com/sandevgo/gsb/internal/service/session"
	"github.com/sandevgo/gsb/pkg/log"
	"github.com/sandevgo/gsb/pkg/retry"
)

const (
	maxLineLength = 64 * 1024

	msgBanned = "You are banned from this server."
)

// Server accepts telnet clients and feeds their lines to a session.
type Server struct {
	addr    string
	codec   *codec
	session *session.Session

	mu      sync.Mutex
	ln      net.Listener
	closing bool
	clients map[net.Conn]struct{}
	wg      sync.WaitGroup
}

func NewServer(addr, encodingName string, s *session.Session) (*Server, error) {
	c, err := newCodec(encodingName)
	if err != nil {
		return nil, err
	}
	return &Server{
		addr:    addr,
		codec:   c,
		session: s,
		clients: make(map[net.Conn]struct{}),
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen binds the address, retrying while it is still in use.
func (s *Server) Listen(ctx context.Context) error {
	cfg := retry.NewDefaultConfig()
	cfg.Retryable = func(err error) bool {
		return errors.Is(err, syscall.EADDRINUSE)
	}

	ln, err := retry.Value(ctx, retry.NewRetrier(cfg), func() (net.Listener, error) {
		return net.Listen("tcp", s.addr)
	})
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	log.FromCtx(ctx).Info().Str("addr", ln.Addr().String()).Msg("Telnet server listening")
	return nil
}

// Addr is the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts clients until the listener is closed.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("telnet server is not listening")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		s.clients[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for c := range s.clients {
		_ = c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	host, port := splitAddr(conn.RemoteAddr())
	w := &lineWriter{conn: conn, codec: s.codec}

	sc, err := s.session.Accept(ctx, host, port, w)
	if err != nil {
		if errors.Is(err, session.ErrBanned) {
			_ = w.WriteLine(msgBanned)
		}
		log.FromCtx(ctx).Info().Err(err).Str("host", host).Msg("Connection refused")
		_ = conn.Close()
		return
	}
	defer s.session.Disconnect(ctx, sc)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	for scanner.Scan() {
		line := s.codec.decode(stripCommands(scanner.Bytes()))
		s.session.HandleLine(ctx, sc, line)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.FromCtx(ctx).Debug().Err(err).Str("conn", sc.ID()).Msg("Read failed")
	}
}

func splitAddr(addr net.Addr) (string, int) {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String(), tcp.Port
	}
	return addr.String(), 0
}

type lineWriter struct {
	mu    sync.Mutex
	conn  net.Conn
	codec *codec
}

func (w *lineWriter) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.conn.Write(w.codec.encode(line + "\r\n"))
	return err
}

func (w *lineWriter) Close() error {
	return w.conn.Close()
}
