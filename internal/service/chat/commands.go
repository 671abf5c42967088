package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/internal/service/command"
	"github.com/sandevgo/gsb/internal/service/intercept"
)

const (
	MsgNickTaken   = "That nickname is already taken."
	MsgNickTooLong = "Nicknames can be at most %d characters."
	MsgGoodbye     = "Goodbye."
	MsgBanSelf     = "You cannot ban yourself."
	MsgNothingPost = "Nothing to post."
)

var ErrNoModerator = errors.New("bans are not available")

func (r *Room) register() {
	r.parser.MustRegister(command.Spec{
		Names:       []string{"help", "commands"},
		Description: "Show all commands, or explain one.",
		Help:        "help [command]",
		Args:        `\s*(?P<name>\S*)`,
		Handler:     r.doHelp,
	})
	r.parser.Substitute('?', "help")

	r.parser.MustRegister(command.Spec{
		Names:       []string{"say"},
		Description: "Say something to your channel.",
		Help:        "say <anything>",
		Args:        `(?P<text>.+)`,
		Handler: func(_ context.Context, c *core.Caller) error {
			r.say(c.Conn, c.Kwargs["text"])
			return nil
		},
	})
	r.parser.Substitute('\'', "say")

	r.parser.MustRegister(command.Spec{
		Names:       []string{"emote"},
		Description: "Emote something to your channel.",
		Help:        "emote <anything>",
		Args:        `(?P<text>.+)`,
		Handler: func(_ context.Context, c *core.Caller) error {
			r.emote(c.Conn, c.Kwargs["text"])
			return nil
		},
	})
	r.parser.Substitute(':', "emote")
	r.parser.Substitute(',', "emote")

	r.parser.MustRegister(command.Spec{
		Names:       []string{"nick", "nickname", "name", "handle"},
		Description: "Set your nickname.",
		Help:        "nick <nickname>",
		Args:        `(?P<nick>\S.*)`,
		Handler:     r.doNick,
	})

	r.parser.MustRegister(command.Spec{
		Names:       []string{"who"},
		Description: "Show who is connected.",
		Help:        "who",
		Handler:     r.doWho,
	})

	r.parser.MustRegister(command.Spec{
		Names:       []string{"channel"},
		Description: "Choose the channel you talk in.",
		Help:        "channel",
		Handler:     r.doChannel,
	})

	r.parser.MustRegister(command.Spec{
		Names:       []string{"post"},
		Description: "Post a bulletin to everyone.",
		Help:        fmt.Sprintf("post, then type lines of text. Type %s to check spelling.", intercept.DefaultSpellToken),
		Handler:     r.doPost,
	})

	r.parser.MustRegister(command.Spec{
		Names:       []string{"quit"},
		Description: "Disconnect from the server.",
		Help:        "quit",
		Handler:     r.doQuit,
	})

	admin := command.Or(command.FromHosts(r.admins...), command.FromHosts(core.ConsoleHost))
	r.parser.MustRegister(command.Spec{
		Names:       []string{"ban"},
		Description: "Ban a host and disconnect it.",
		Help:        "ban <host> [reason]",
		Args:        `(?P<host>\S+)(?:\s+(?P<reason>.+))?`,
		Allowed:     command.And(admin, notSelf),
		Handler:     r.doBan,
	})
	r.parser.MustRegister(command.Spec{
		Names:       []string{"ban"},
		Description: "Ban a host and disconnect it.",
		Help:        "ban <host> [reason]",
		Allowed:     admin,
		Handler: func(_ context.Context, c *core.Caller) error {
			c.Send(MsgBanSelf)
			return nil
		},
	})
	r.parser.MustRegister(command.Spec{
		Names:       []string{"unban"},
		Description: "Lift the ban on a host.",
		Help:        "unban <host>",
		Args:        `(?P<host>\S+)`,
		Allowed:     admin,
		Handler:     r.doUnban,
	})
	r.parser.MustRegister(command.Spec{
		Names:       []string{"bans"},
		Description: "List banned hosts.",
		Help:        "bans",
		Allowed:     admin,
		Handler:     r.doBans,
	})
}

// notSelf refuses a ban naming the caller's own host.
func notSelf(c *core.Caller) bool {
	host, _, _ := strings.Cut(strings.TrimSpace(c.ArgsStr), " ")
	return c.Conn == nil || host != c.Conn.Host()
}

func (r *Room) doHelp(_ context.Context, c *core.Caller) error {
	name := c.Kwargs["name"]
	if name == "" {
		var allowed []*command.Command
		for _, cmd := range r.parser.Commands() {
			if cmd.Allows(c) && !contains(allowed, cmd.Name()) {
				allowed = append(allowed, cmd)
			}
		}
		for _, line := range r.formatter.Listing(fmt.Sprintf("Showing help for %d commands.", len(allowed)), allowed) {
			c.Send(line)
		}
		c.Send(r.formatter.Tip("type help <command> for details. Anything else you type is said aloud."))
		return nil
	}

	for _, cmd := range r.parser.Lookup(name) {
		if cmd.Allows(c) {
			r.parser.Explain(c.Conn, cmd)
			return nil
		}
	}
	c.Send("There is no command named %s.", name)
	return nil
}

func contains(cmds []*command.Command, name string) bool {
	for _, cmd := range cmds {
		if cmd.Name() == name {
			return true
		}
	}
	return false
}

func (r *Room) doNick(_ context.Context, c *core.Caller) error {
	nick := strings.TrimSpace(c.Kwargs["nick"])
	if utf8.RuneCountInString(nick) > maxNickLength {
		c.Send(MsgNickTooLong, maxNickLength)
		return nil
	}
	if findNick(c.Conn.Session(), nick, c.Conn) != nil {
		c.Send(MsgNickTaken)
		return nil
	}

	old := Nick(c.Conn)
	c.Conn.Session().Broadcast("%s is now known as %s.", old, nick)
	c.Conn.Set(keyNick, nick)
	return nil
}

func (r *Room) doWho(_ context.Context, c *core.Caller) error {
	conns := c.Conn.Session().Connections()
	items := make([]string, 0, len(conns))
	for _, conn := range conns {
		items = append(items, fmt.Sprintf("%s (%s) in %s", Nick(conn), conn.Host(), Channel(conn)))
	}
	c.Send(r.formatter.Label("Connected", fmt.Sprint(len(conns))))
	for _, line := range r.formatter.List(items) {
		c.Send(line)
	}
	return nil
}

func (r *Room) doChannel(ctx context.Context, c *core.Caller) error {
	m := intercept.NewMenu(fmt.Sprintf("You are in %s. Select a channel:", Channel(c.Conn)))
	add := func(name string) *intercept.MenuItem {
		return m.AddItem(name, func(_ context.Context, c *core.Caller) {
			r.join(c.Conn, name)
		})
	}

	var lastPublic *intercept.MenuItem
	for _, name := range r.public {
		lastPublic = add(name)
	}
	m.AddLabel("Public", nil)
	if len(r.quiet) > 0 {
		m.AddLabel("Quiet", lastPublic)
		for _, name := range r.quiet {
			add(name)
		}
	}

	c.Conn.SetDispatcher(ctx, m)
	return nil
}

func (r *Room) join(conn core.Connection, channel string) {
	old := Channel(conn)
	if old == channel {
		conn.Send("You are already in %s.", channel)
		return
	}
	for _, other := range members(conn.Session(), old) {
		if other.ID() != conn.ID() {
			other.Send("%s has left the channel.", Nick(conn))
		}
	}
	conn.Set(keyChannel, channel)
	for _, other := range members(conn.Session(), channel) {
		if other.ID() != conn.ID() {
			other.Send("%s has joined the channel.", Nick(conn))
		}
	}
	conn.Send("You are now in %s.", channel)
}

func (r *Room) doPost(ctx context.Context, c *core.Caller) error {
	reader := intercept.NewMultilineReader(func(_ context.Context, c *core.Caller) {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			c.Send(MsgNothingPost)
			return
		}
		c.Conn.Session().Broadcast("Bulletin from %s:\n%s", Nick(c.Conn), text)
	})
	c.Conn.SetDispatcher(ctx, reader)
	return nil
}

func (r *Room) doQuit(ctx context.Context, c *core.Caller) error {
	y := intercept.NewYesOrNo("Are you sure you want to quit?", func(ctx context.Context, c *core.Caller) {
		c.Send(MsgGoodbye)
		c.Conn.Session().Disconnect(ctx, c.Conn)
	})
	c.Conn.SetDispatcher(ctx, y)
	return nil
}

func (r *Room) doBan(ctx context.Context, c *core.Caller) error {
	if r.mod == nil {
		return ErrNoModerator
	}
	host := c.Kwargs["host"]
	kicked, err := r.mod.Ban(ctx, host, c.Arg("reason", "Banned by "+Nick(c.Conn)+"."))
	if err != nil {
		return err
	}
	c.Send("Banned %s. Connections closed: %d.", host, kicked)
	return nil
}

func (r *Room) doUnban(ctx context.Context, c *core.Caller) error {
	if r.mod == nil {
		return ErrNoModerator
	}
	host := c.Kwargs["host"]
	ok, err := r.mod.Unban(ctx, host)
	if err != nil {
		return err
	}
	if !ok {
		c.Send("%s is not banned.", host)
		return nil
	}
	c.Send("Unbanned %s.", host)
	return nil
}

func (r *Room) doBans(ctx context.Context, c *core.Caller) error {
	if r.mod == nil {
		return ErrNoModerator
	}
	bans, err := r.mod.Bans(ctx)
	if err != nil {
		return err
	}
	if len(bans) == 0 {
		c.Send("No hosts are banned.")
		return nil
	}

	items := make([]string, 0, len(bans))
	for _, b := range bans {
		item := b.Host
		if b.Reason != "" {
			item += ": " + b.Reason
		}
		items = append(items, item)
	}
	for _, line := range r.formatter.Heading("Banned hosts") {
		c.Send(line)
	}
	for _, line := range r.formatter.List(items) {
		c.Send(line)
	}
	return nil
}
