package intercept

import (
	"context"
	"fmt"

	"github.com/sandevgo/gsb/internal/core"
)

const (
	DefaultLineSeparator = "\n"
	DefaultFinishToken   = "."
	DefaultSpellToken    = ".spell"

	MsgSpellUnavailable = "Spell checking is not available on this system."
	MsgSpellComplete    = "Spell checking complete."
)

// Reader collects one line, or several lines up to the finish token, and
// passes the text to Done.
type Reader struct {
	*Intercept

	Buffer      string
	Separator   string
	Multiline   bool
	FinishToken string
	SpellToken  string

	Prompt Text
	// BeforeLine is sent before each line is read and AfterLine after each
	// accepted line. Callbacks see the buffer as c.Text.
	BeforeLine Text
	AfterLine  Text

	// Done receives the buffer as c.Text after the previous dispatcher is restored.
	Done HandleFunc
}

func NewReader(done HandleFunc) *Reader {
	r := &Reader{
		Separator:   DefaultLineSeparator,
		FinishToken: DefaultFinishToken,
		SpellToken:  DefaultSpellToken,
		Done:        done,
	}
	r.Intercept = New(r.render, r.handle)
	return r
}

// NewMultilineReader is NewReader collecting lines until the finish token.
func NewMultilineReader(done HandleFunc) *Reader {
	r := NewReader(done)
	r.Multiline = true
	return r
}

func (r *Reader) prompt() Text {
	if !r.Prompt.IsZero() {
		return r.Prompt
	}

	abort := ""
	if r.CanAbort() {
		abort = fmt.Sprintf(" or %s to exit", r.AbortToken)
	}
	if r.Multiline {
		return Literal(fmt.Sprintf("Enter lines of text. Type %s on a blank line to finish%s.", r.FinishToken, abort))
	}
	return Literal(fmt.Sprintf("Enter a line of text%s.", abort))
}

func (r *Reader) bufferCaller(conn core.Connection) *core.Caller {
	return core.NewCaller(conn, r.Buffer)
}

func (r *Reader) render(ctx context.Context, conn core.Connection) {
	c := r.bufferCaller(conn)
	r.prompt().Send(ctx, c)
	r.BeforeLine.Send(ctx, c)
}

func (r *Reader) handle(ctx context.Context, c *core.Caller) {
	line := c.Text
	if line == r.SpellToken {
		r.spellCheck(ctx, c)
		return
	}

	finished := !r.Multiline || line == r.FinishToken
	if (!r.Multiline || line != r.FinishToken) && line != "" {
		if r.Buffer != "" {
			r.Buffer += r.Separator + line
		} else {
			r.Buffer = line
		}
		r.AfterLine.Send(ctx, r.bufferCaller(c.Conn))
	}

	if finished {
		c.Text = r.Buffer
		r.Restore(ctx, c.Conn)
		if r.Done != nil {
			r.Done(ctx, c)
		}
		return
	}
	r.BeforeLine.Send(ctx, r.bufferCaller(c.Conn))
}

func (r *Reader) spellCheck(ctx context.Context, c *core.Caller) {
	if c.Conn == nil {
		return
	}

	var factory core.SpellCheckerFactory
	if s := c.Conn.Session(); s != nil {
		factory = s.SpellChecker(c)
	}
	if factory == nil {
		c.Send(MsgSpellUnavailable)
		return
	}
	c.Conn.SetDispatcher(ctx, factory(r.Buffer, r.resume))
}

// resume takes the corrected text back from a spell checker.
func (r *Reader) resume(ctx context.Context, c *core.Caller) {
	c.Send(MsgSpellComplete)
	if c.Text != "" {
		r.Buffer = c.Text
	}
	if c.Conn != nil {
		c.Conn.SetDispatcher(ctx, r)
	}
}
