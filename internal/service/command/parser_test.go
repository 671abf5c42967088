package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/test"
)

func TestParser_Register(t *testing.T) {
	p := NewParser()

	_, err := p.Register(Spec{Handler: func(context.Context, *core.Caller) error { return nil }})
	assert.ErrorIs(t, err, ErrNoNames)

	_, err = p.Register(Spec{Names: []string{"look"}})
	assert.ErrorIs(t, err, ErrNoHandler)

	_, err = p.Register(Spec{
		Names:   []string{"look"},
		Args:    "(",
		Handler: func(context.Context, *core.Caller) error { return nil },
	})
	assert.Error(t, err)

	cmd, err := p.Register(Spec{
		Names:   []string{"look", "l"},
		Handler: func(context.Context, *core.Caller) error { return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultDescription, cmd.Description)
	assert.Equal(t, DefaultHelp, cmd.Help)
	assert.Equal(t, "look", cmd.Name())

	assert.Equal(t, []*Command{cmd}, p.Lookup("look"))
	assert.Equal(t, []*Command{cmd}, p.Lookup("l"))
	assert.Equal(t, []*Command{cmd}, p.Commands())
	assert.Empty(t, p.Lookup("missing"))
}

func TestParser_FreshContainers(t *testing.T) {
	a := NewParser()
	b := NewParser()
	a.MustRegister(Spec{Names: []string{"x"}, Handler: func(context.Context, *core.Caller) error { return nil }})
	a.Substitute('\'', "x")

	assert.Empty(t, b.Commands())
	assert.Equal(t, "'hi", b.substitute("'hi"))
}

func TestParser_HandleLine(t *testing.T) {
	ctx := context.Background()

	t.Run("greeting with name", func(t *testing.T) {
		p := NewParser()
		var got string
		p.MustRegister(Spec{
			Names: []string{"greet"},
			Args:  `(?P<name>\w+)`,
			Handler: func(_ context.Context, c *core.Caller) error {
				got = c.Kwargs["name"]
				assert.Equal(t, []string{"bob"}, c.Args)
				assert.Equal(t, "greet", c.Command)
				assert.Equal(t, "bob", c.ArgsStr)
				return nil
			},
		})

		conn := test.NewConn("1", nil)
		assert.Equal(t, 1, p.HandleLine(ctx, conn, "greet bob"))
		assert.Equal(t, "bob", got)
		assert.Empty(t, conn.Lines())
	})

	t.Run("argument mismatch explains usage", func(t *testing.T) {
		p := NewParser()
		called := false
		p.MustRegister(Spec{
			Names:       []string{"greet", "hello"},
			Description: "Greet someone.",
			Help:        "Type greet followed by a name.",
			Args:        `(?P<name>\w+)`,
			Handler: func(context.Context, *core.Caller) error {
				called = true
				return nil
			},
		})
		p.Substitute('!', "greet")

		conn := test.NewConn("1", nil)
		assert.Equal(t, 0, p.HandleLine(ctx, conn, "greet"))
		assert.False(t, called)
		assert.Equal(t, []string{
			"greet or hello:",
			`Instead of typing "greet ", you can type !.`,
			"Greet someone.",
			"Type greet followed by a name.",
		}, conn.Lines())
	})

	t.Run("mismatch stops further overloads", func(t *testing.T) {
		p := NewParser()
		second := false
		p.MustRegister(Spec{Names: []string{"x"}, Args: `\d+`, Handler: func(context.Context, *core.Caller) error { return nil }})
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(context.Context, *core.Caller) error {
			second = true
			return nil
		}})

		conn := test.NewConn("1", nil)
		p.HandleLine(ctx, conn, "x abc")
		assert.False(t, second)
		assert.NotContains(t, conn.Lines(), MsgUnrecognized)
	})

	t.Run("unknown command", func(t *testing.T) {
		p := NewParser()
		conn := test.NewConn("1", nil)
		assert.Equal(t, 0, p.HandleLine(ctx, conn, "dance"))
		assert.Equal(t, []string{MsgUnrecognized}, conn.Lines())
	})

	t.Run("unrecognized hook replaces default", func(t *testing.T) {
		p := NewParser()
		var text string
		p.Unrecognized = func(_ context.Context, c *core.Caller) {
			text = c.Text
		}
		conn := test.NewConn("1", nil)
		p.HandleLine(ctx, conn, "dance wildly")
		assert.Equal(t, "dance wildly", text)
		assert.Empty(t, conn.Lines())
	})

	t.Run("continue falls through to next overload", func(t *testing.T) {
		p := NewParser()
		var calls []string
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(_ context.Context, c *core.Caller) error {
			calls = append(calls, "a")
			return c.Continue()
		}})
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(context.Context, *core.Caller) error {
			calls = append(calls, "b")
			return nil
		}})
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(context.Context, *core.Caller) error {
			calls = append(calls, "c")
			return nil
		}})

		conn := test.NewConn("1", nil)
		assert.Equal(t, 2, p.HandleLine(ctx, conn, "x"))
		assert.Equal(t, []string{"a", "b"}, calls)
	})

	t.Run("wrapped continue", func(t *testing.T) {
		p := NewParser()
		reached := false
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(context.Context, *core.Caller) error {
			return errors.Join(errors.New("skip"), core.ErrContinue)
		}})
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(context.Context, *core.Caller) error {
			reached = true
			return nil
		}})

		p.HandleLine(ctx, test.NewConn("1", nil), "x")
		assert.True(t, reached)
	})

	t.Run("all overloads continue", func(t *testing.T) {
		p := NewParser()
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(_ context.Context, c *core.Caller) error {
			return c.Continue()
		}})

		conn := test.NewConn("1", nil)
		assert.Equal(t, 1, p.HandleLine(ctx, conn, "x"))
		assert.Empty(t, conn.Lines())
	})

	t.Run("permission denied is silent", func(t *testing.T) {
		p := NewParser()
		called := false
		p.MustRegister(Spec{
			Names:   []string{"shutdown"},
			Allowed: func(*core.Caller) bool { return false },
			Handler: func(context.Context, *core.Caller) error {
				called = true
				return nil
			},
		})

		conn := test.NewConn("1", nil)
		assert.Equal(t, 0, p.HandleLine(ctx, conn, "shutdown now"))
		assert.False(t, called)
		assert.Equal(t, []string{MsgUnrecognized}, conn.Lines())
	})

	t.Run("handler error", func(t *testing.T) {
		p := NewParser()
		boom := errors.New("boom")
		var seen error
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(context.Context, *core.Caller) error { return boom }})
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(context.Context, *core.Caller) error {
			t.Fatal("dispatch continued after an error")
			return nil
		}})
		p.PostCommand = func(_ context.Context, c *core.Caller, matched int) {
			seen = c.Err
			assert.Equal(t, 1, matched)
		}

		conn := test.NewConn("1", nil)
		assert.Equal(t, 1, p.HandleLine(ctx, conn, "x"))
		assert.ErrorIs(t, seen, boom)
		assert.Equal(t, []string{MsgError}, conn.Lines())
	})

	t.Run("handler panic", func(t *testing.T) {
		p := NewParser()
		var caught error
		p.OnError = func(_ context.Context, c *core.Caller) {
			caught = c.Err
		}
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(context.Context, *core.Caller) error {
			panic("kaboom")
		}})

		conn := test.NewConn("1", nil)
		assert.Equal(t, 1, p.HandleLine(ctx, conn, "x"))
		assert.ErrorIs(t, caught, ErrPanic)
		assert.Contains(t, caught.Error(), "kaboom")
		assert.Empty(t, conn.Lines())
	})

	t.Run("pre-command rejects", func(t *testing.T) {
		p := NewParser()
		p.PreCommand = func(context.Context, *core.Caller) bool { return false }
		post := false
		p.PostCommand = func(context.Context, *core.Caller, int) { post = true }

		conn := test.NewConn("1", nil)
		assert.Equal(t, 0, p.HandleLine(ctx, conn, "anything"))
		assert.False(t, post)
		assert.Empty(t, conn.Lines())
	})

	t.Run("substitution", func(t *testing.T) {
		p := NewParser()
		var said string
		p.MustRegister(Spec{
			Names: []string{"say"},
			Args:  `(?P<text>.*)`,
			Handler: func(_ context.Context, c *core.Caller) error {
				said = c.Kwargs["text"]
				assert.Equal(t, "say hello", c.Text)
				return nil
			},
		})
		p.Substitute('\'', "say")

		assert.Equal(t, 1, p.HandleLine(ctx, test.NewConn("1", nil), "'hello"))
		assert.Equal(t, "hello", said)
	})

	t.Run("custom separator", func(t *testing.T) {
		p := NewParser(WithSeparator(":"))
		var args string
		p.MustRegister(Spec{Names: []string{"set"}, Handler: func(_ context.Context, c *core.Caller) error {
			args = c.ArgsStr
			return nil
		}})

		p.HandleLine(ctx, test.NewConn("1", nil), "set:a b")
		assert.Equal(t, "a b", args)
	})

	t.Run("default argument pattern", func(t *testing.T) {
		p := NewParser(WithDefaultArgs(`(?P<rest>.+)`))
		p.MustRegister(Spec{Names: []string{"x"}, Handler: func(_ context.Context, c *core.Caller) error {
			assert.Equal(t, "abc", c.Kwargs["rest"])
			return nil
		}})

		conn := test.NewConn("1", nil)
		assert.Equal(t, 1, p.HandleLine(ctx, conn, "x abc"))
		assert.Equal(t, 0, p.HandleLine(ctx, conn, "x"))
	})

	t.Run("pattern matches at start only", func(t *testing.T) {
		p := NewParser()
		p.MustRegister(Spec{Names: []string{"n"}, Args: `\d+`, Handler: func(context.Context, *core.Caller) error { return nil }})

		conn := test.NewConn("1", nil)
		assert.Equal(t, 1, p.HandleLine(ctx, conn, "n 42 apples"))
		assert.Equal(t, 0, p.HandleLine(ctx, conn, "n apples 42"))
	})
}

func TestRegisterAll(t *testing.T) {
	a, b := NewParser(), NewParser()
	cmds, err := RegisterAll([]*Parser{a, b}, Spec{
		Names:   []string{"quit"},
		Handler: func(context.Context, *core.Caller) error { return nil },
	})
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Len(t, a.Lookup("quit"), 1)
	assert.Len(t, b.Lookup("quit"), 1)
}

func TestResponseFormatter_Listing(t *testing.T) {
	p := NewParser()
	p.MustRegister(Spec{Names: []string{"say", "'"}, Description: "Say something.", Handler: func(context.Context, *core.Caller) error { return nil }})

	lines := NewResponseFormatter().Listing("Commands", p.Commands())
	assert.Equal(t, []string{
		"Commands",
		"--------",
		"say, '           Say something.",
	}, lines)
}
