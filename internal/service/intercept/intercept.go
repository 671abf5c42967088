package intercept

import (
	"context"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/internal/service/command"
)

const (
	DefaultAbortToken = "@abort"
	MsgAborted        = "Aborted."
)

type (
	RenderFunc func(ctx context.Context, conn core.Connection)
	HandleFunc func(ctx context.Context, c *core.Caller)
)

// Intercept is a temporary dispatcher that takes over a connection's input
// and hands it back to the dispatcher it replaced when it is done.
type Intercept struct {
	*command.Parser

	AbortToken string
	// NoAbort, when set, is sent instead of aborting.
	NoAbort Text
	Aborted Text
	// OnAbort replaces restoring the previous dispatcher after an abort.
	OnAbort HandleFunc

	restore    core.Dispatcher
	restoreSet bool

	render RenderFunc
	handle HandleFunc
}

// New builds an Intercept. render is called whenever it is attached and
// handle receives every line except the abort token.
func New(render RenderFunc, handle HandleFunc) *Intercept {
	i := &Intercept{
		Parser:     command.NewParser(),
		AbortToken: DefaultAbortToken,
		Aborted:    Literal(MsgAborted),
		render:     render,
		handle:     handle,
	}
	i.Parser.Unrecognized = i.dispatch
	return i
}

// SetRestore fixes the dispatcher restored on completion, instead of the
// one found at first attach.
func (i *Intercept) SetRestore(d core.Dispatcher) {
	i.restore = d
	i.restoreSet = true
}

func (i *Intercept) RestoreTarget() core.Dispatcher {
	return i.restore
}

// Restore gives the connection back to the dispatcher this intercept replaced.
func (i *Intercept) Restore(ctx context.Context, conn core.Connection) {
	if conn != nil {
		conn.SetDispatcher(ctx, i.restore)
	}
}

// CanAbort reports whether the abort token is honoured.
func (i *Intercept) CanAbort() bool {
	return i.NoAbort.IsZero()
}

func (i *Intercept) OnAttach(ctx context.Context, conn core.Connection, previous core.Dispatcher) {
	if !i.restoreSet {
		i.restore = previous
		i.restoreSet = true
	}
	i.Parser.OnAttach(ctx, conn, previous)
	i.Render(ctx, conn)
}

// Render explains the intercept to conn.
func (i *Intercept) Render(ctx context.Context, conn core.Connection) {
	if i.render != nil && conn != nil {
		i.render(ctx, conn)
	}
}

// Abort ends the intercept, unless aborting is suppressed.
func (i *Intercept) Abort(ctx context.Context, c *core.Caller) {
	if !i.CanAbort() {
		i.NoAbort.Send(ctx, c)
		return
	}

	i.Aborted.Send(ctx, c)
	if i.OnAbort != nil {
		i.OnAbort(ctx, c)
		return
	}
	i.Restore(ctx, c.Conn)
}

func (i *Intercept) dispatch(ctx context.Context, c *core.Caller) {
	if c.Text == i.AbortToken {
		i.Abort(ctx, c)
		return
	}
	if i.handle != nil {
		i.handle(ctx, c)
	}
}
