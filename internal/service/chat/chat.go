package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/internal/service/command"
	"github.com/sandevgo/gsb/internal/service/session"
	"github.com/sandevgo/gsb/pkg/log"
)

const (
	DefaultWelcome = "Welcome to the chatroom. Type help for help."
	DefaultChannel = "general"

	keyNick    = "nick"
	keyChannel = "channel"

	maxNickLength = 32
)

// Moderator stores bans and enforces them on live connections.
type Moderator interface {
	Ban(ctx context.Context, host, reason string) (int, error)
	Unban(ctx context.Context, host string) (bool, error)
	Bans(ctx context.Context) ([]core.Ban, error)
}

type Options struct {
	Welcome   string
	Admins    []string
	Separator string
	// Public and Quiet list the channel names offered by the channel menu.
	Public []string
	Quiet  []string
}

// Room is a chat application built on the baseline parser.
type Room struct {
	parser    *command.Parser
	formatter *command.ResponseFormatter
	mod       Moderator

	welcome string
	admins  []string
	public  []string
	quiet   []string
}

func New(opts Options) *Room {
	r := &Room{
		parser:    command.NewParser(command.WithSeparator(opts.Separator)),
		formatter: command.NewResponseFormatter(),
		welcome:   opts.Welcome,
		admins:    opts.Admins,
		public:    opts.Public,
		quiet:     opts.Quiet,
	}
	if r.welcome == "" {
		r.welcome = DefaultWelcome
	}
	if len(r.public) == 0 {
		r.public = []string{DefaultChannel, "games", "trade"}
	}
	if r.quiet == nil {
		r.quiet = []string{"library"}
	}

	r.parser.Unrecognized = r.unrecognized
	r.register()
	return r
}

// Parser is the baseline dispatcher for the session.
func (r *Room) Parser() *command.Parser {
	return r.parser
}

// Bind installs the room's connect and disconnect events on s and uses it
// for bans.
func (r *Room) Bind(s *session.Session) {
	r.mod = s
	s.OnConnect = r.onConnect
	s.OnDisconnect = r.onDisconnect
	s.OnStart = func(ctx context.Context, _ *core.Caller) {
		log.FromCtx(ctx).Info().Int("commands", len(r.parser.Commands())).Msg("Chat room open")
	}
}

func (r *Room) onConnect(ctx context.Context, c *core.Caller) {
	conn := c.Conn
	conn.Send(r.welcome)
	conn.Set(keyNick, r.defaultNick(conn))
	conn.Set(keyChannel, DefaultChannel)
	conn.Session().Broadcast("%s has connected.", Nick(conn))
}

func (r *Room) onDisconnect(_ context.Context, c *core.Caller) {
	c.Conn.Session().Broadcast("%s has disconnected.", Nick(c.Conn))
}

// unrecognized treats text that does not start with a command name as speech.
func (r *Room) unrecognized(ctx context.Context, c *core.Caller) {
	if c.Text == "" {
		return
	}
	if len(r.parser.Lookup(c.Command)) > 0 {
		c.Send(command.MsgUnrecognized)
		return
	}
	r.say(c.Conn, c.Text)
}

// Nick returns the connection's nickname, or its host before one is set.
func Nick(conn core.Connection) string {
	if nick, ok := conn.Get(keyNick).(string); ok && nick != "" {
		return nick
	}
	return conn.Host()
}

// Channel returns the channel conn talks in.
func Channel(conn core.Connection) string {
	if ch, ok := conn.Get(keyChannel).(string); ok && ch != "" {
		return ch
	}
	return DefaultChannel
}

func (r *Room) defaultNick(conn core.Connection) string {
	nick := conn.Host()
	for i := 2; findNick(conn.Session(), nick, conn) != nil; i++ {
		nick = fmt.Sprintf("%s-%d", conn.Host(), i)
	}
	return nick
}

// findNick returns the connection other than self using nick, ignoring case.
func findNick(s core.Session, nick string, self core.Connection) core.Connection {
	for _, other := range s.Connections() {
		if other.ID() == self.ID() {
			continue
		}
		if strings.EqualFold(Nick(other), nick) {
			return other
		}
	}
	return nil
}

// members returns the connections in channel.
func members(s core.Session, channel string) []core.Connection {
	var out []core.Connection
	for _, conn := range s.Connections() {
		if Channel(conn) == channel {
			out = append(out, conn)
		}
	}
	return out
}

func (r *Room) say(from core.Connection, text string) {
	for _, conn := range members(from.Session(), Channel(from)) {
		conn.Send("%s: %s", Nick(from), text)
	}
}

func (r *Room) emote(from core.Connection, text string) {
	for _, conn := range members(from.Session(), Channel(from)) {
		conn.Send("%s %s", Nick(from), text)
	}
}
