package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/internal/service/session"
	"github.com/sandevgo/gsb/pkg/log"
)

const (
	baseContextKey = "base_context"
	startCommand   = "/start"

	msgBanned = "You are banned from this server."
)

type chat struct {
	conn   *session.Conn
	writer *chatWriter
}

// Bot maps each Telegram chat to one session connection.
type Bot struct {
	bot     *tele.Bot
	sender  *sender
	session *session.Session

	mu    sync.Mutex
	chats map[int64]*chat
}

func NewBot(
	ctx context.Context,
	cfg core.TelegramConfig,
	s *session.Session,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.GetTelegramToken(),
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		sender:  newSender(b),
		session: s,
		chats:   make(map[int64]*chat),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()

	b.mu.Lock()
	chats := make([]*chat, 0, len(b.chats))
	for id, ch := range b.chats {
		chats = append(chats, ch)
		delete(b.chats, id)
	}
	b.mu.Unlock()

	for _, ch := range chats {
		b.session.Disconnect(ctx, ch.conn)
	}
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	chatID := c.Chat().ID

	ch, fresh, err := b.chatFor(ctx, c.Chat())
	if errors.Is(err, session.ErrBanned) {
		return c.Send(msgBanned)
	}
	if err != nil {
		return err
	}

	text := c.Text()
	if !(fresh && text == startCommand) {
		b.session.HandleLine(ctx, ch.conn, commandLine(text))
	}

	if ch.conn.IsClosed() {
		b.drop(ctx, chatID, ch)
		return nil
	}
	return ch.writer.Flush()
}

// chatFor returns the chat's connection, accepting a new one when needed.
func (b *Bot) chatFor(ctx context.Context, tc *tele.Chat) (*chat, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.chats[tc.ID]; ok {
		return ch, false, nil
	}

	w := newChatWriter(ctx, tc, b.sender)
	conn, err := b.session.Accept(ctx, Host(tc.ID), 0, w)
	if err != nil {
		return nil, false, err
	}
	ch := &chat{conn: conn, writer: w}
	b.chats[tc.ID] = ch
	return ch, true, nil
}

func (b *Bot) drop(ctx context.Context, id int64, ch *chat) {
	b.mu.Lock()
	if b.chats[id] == ch {
		delete(b.chats, id)
	}
	b.mu.Unlock()
	b.session.Disconnect(ctx, ch.conn)
}

// Host is the connection host used for a chat.
func Host(chatID int64) string {
	return core.TelegramHostPref + strconv.FormatInt(chatID, 10)
}

// commandLine turns "/say hi" into "say hi"; Telegram clients prefix commands.
func commandLine(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		text = strings.TrimPrefix(text, "/")
		// Group chats address commands as /cmd@botname.
		if name, rest, ok := strings.Cut(text, " "); ok {
			name, _, _ = strings.Cut(name, "@")
			return name + " " + rest
		}
		name, _, _ := strings.Cut(text, "@")
		return name
	}
	return text
}
