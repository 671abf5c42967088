package intercept

import (
	"context"

	"github.com/sandevgo/gsb/internal/core"
)

// Text is either a literal line or a callback that produces output itself.
// The zero value sends nothing.
type Text struct {
	Literal  string
	Callback func(ctx context.Context, c *core.Caller)
}

func Literal(s string) Text {
	return Text{Literal: s}
}

func Callback(f func(ctx context.Context, c *core.Caller)) Text {
	return Text{Callback: f}
}

func (t Text) IsZero() bool {
	return t.Literal == "" && t.Callback == nil
}

// Send runs the callback, or writes the literal to the caller's connection.
func (t Text) Send(ctx context.Context, c *core.Caller) {
	switch {
	case t.Callback != nil:
		t.Callback(ctx, c)
	case t.Literal != "":
		c.Send(t.Literal)
	}
}

// or returns t unless it is zero.
func (t Text) or(def Text) Text {
	if t.IsZero() {
		return def
	}
	return t
}
