package telegram

import (
	"context"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"
)

// flushDelay groups lines produced close together into one message.
const flushDelay = 250 * time.Millisecond

// chatWriter buffers a chat's outbound lines until they are flushed.
type chatWriter struct {
	ctx    context.Context
	chat   tele.Recipient
	sender *sender

	mu     sync.Mutex
	buf    []string
	timer  *time.Timer
	closed bool
}

func newChatWriter(ctx context.Context, chat tele.Recipient, s *sender) *chatWriter {
	return &chatWriter{ctx: ctx, chat: chat, sender: s}
}

func (w *chatWriter) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.buf = append(w.buf, line)
	if w.timer == nil {
		w.timer = time.AfterFunc(flushDelay, func() { _ = w.Flush() })
	}
	return nil
}

// Flush sends everything buffered so far.
func (w *chatWriter) Flush() error {
	w.mu.Lock()
	lines := w.buf
	w.buf = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if len(lines) == 0 {
		return nil
	}
	return w.sender.sendLines(w.ctx, w.chat, lines)
}

func (w *chatWriter) Close() error {
	err := w.Flush()
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return err
}
