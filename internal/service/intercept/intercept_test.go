package intercept

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/internal/service/command"
	"github.com/sandevgo/gsb/test"
)

func setup(t *testing.T) (*test.Conn, *command.Parser) {
	t.Helper()
	base := command.NewParser()
	sess := &test.Session{Base: base}
	conn := test.NewConn("1", sess)
	conn.SetDispatcher(context.Background(), nil)
	conn.Take()
	return conn, base
}

func TestIntercept_Abort(t *testing.T) {
	ctx := context.Background()
	conn, base := setup(t)

	handled := 0
	i := New(func(_ context.Context, conn core.Connection) {
		conn.Send("Say something.")
	}, func(context.Context, *core.Caller) {
		handled++
	})

	conn.SetDispatcher(ctx, i)
	assert.Equal(t, []string{"Say something."}, conn.Take())
	assert.Same(t, base, i.RestoreTarget())

	conn.Line(ctx, "hello")
	assert.Equal(t, 1, handled)
	assert.Same(t, i, conn.Dispatcher())

	conn.Line(ctx, DefaultAbortToken)
	assert.Equal(t, []string{MsgAborted}, conn.Take())
	assert.Same(t, base, conn.Dispatcher())
	assert.Equal(t, 1, handled)
}

func TestIntercept_NoAbort(t *testing.T) {
	ctx := context.Background()
	conn, _ := setup(t)

	i := New(nil, nil)
	i.NoAbort = Literal("You cannot abort this.")
	conn.SetDispatcher(ctx, i)

	conn.Line(ctx, "@abort")
	assert.Equal(t, []string{"You cannot abort this."}, conn.Take())
	assert.Same(t, i, conn.Dispatcher())
}

func TestIntercept_OnAbort(t *testing.T) {
	ctx := context.Background()
	conn, _ := setup(t)

	resumed := false
	i := New(nil, nil)
	i.OnAbort = func(context.Context, *core.Caller) { resumed = true }
	conn.SetDispatcher(ctx, i)

	conn.Line(ctx, "@abort")
	assert.True(t, resumed)
	assert.Equal(t, []string{MsgAborted}, conn.Take())
	assert.Same(t, i, conn.Dispatcher())
}

func TestIntercept_AbortedCallback(t *testing.T) {
	ctx := context.Background()
	conn, base := setup(t)

	i := New(nil, nil)
	i.Aborted = Callback(func(_ context.Context, c *core.Caller) {
		c.Send("Never mind, %s.", c.Conn.ID())
	})
	conn.SetDispatcher(ctx, i)

	conn.Line(ctx, "@abort")
	assert.Equal(t, []string{"Never mind, 1."}, conn.Take())
	assert.Same(t, base, conn.Dispatcher())
}

func TestIntercept_RestoreCapturedOnce(t *testing.T) {
	ctx := context.Background()
	conn, base := setup(t)

	outer := NewMenu("Outer")
	inner := NewYesOrNo("Sure?", nil)
	outer.AddItem("Ask", func(ctx context.Context, c *core.Caller) {
		c.Conn.SetDispatcher(ctx, inner)
	})

	conn.SetDispatcher(ctx, outer)
	conn.Line(ctx, "1")
	assert.Same(t, inner, conn.Dispatcher())
	// The menu restored first, so the prompt returns to the baseline.
	assert.Same(t, base, inner.RestoreTarget())

	// Re-attaching the menu does not change where it returns to.
	conn.SetDispatcher(ctx, outer)
	assert.Same(t, base, outer.RestoreTarget())
}

func TestIntercept_SetRestore(t *testing.T) {
	ctx := context.Background()
	conn, _ := setup(t)

	target := command.NewParser()
	i := New(nil, nil)
	i.SetRestore(target)
	conn.SetDispatcher(ctx, i)

	conn.Line(ctx, "@abort")
	assert.Same(t, target, conn.Dispatcher())
}

func TestIntercept_RestoreNilFallsBackToBaseline(t *testing.T) {
	ctx := context.Background()
	base := command.NewParser()
	conn := test.NewConn("1", &test.Session{Base: base})

	i := New(nil, nil)
	conn.SetDispatcher(ctx, i)
	assert.Nil(t, i.RestoreTarget())

	conn.Line(ctx, "@abort")
	assert.Same(t, base, conn.Dispatcher())
}

func TestText(t *testing.T) {
	ctx := context.Background()
	conn := test.NewConn("1", nil)
	c := core.NewCaller(conn, "")

	assert.True(t, Text{}.IsZero())
	Text{}.Send(ctx, c)
	assert.Empty(t, conn.Take())

	Literal("100% done").Send(ctx, c)
	assert.Equal(t, []string{"100% done"}, conn.Take())

	Callback(func(_ context.Context, c *core.Caller) { c.Send("cb") }).Send(ctx, c)
	assert.Equal(t, []string{"cb"}, conn.Take())
}
