package intercept

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/gsb/internal/core"
)

// YesOrNo asks a question and runs Yes for any answer starting with "y".
// Other answers run No, or abort when No is nil.
type YesOrNo struct {
	*Intercept

	Question string
	Prompt   Text
	Yes      HandleFunc
	No       HandleFunc
}

func NewYesOrNo(question string, yes HandleFunc) *YesOrNo {
	y := &YesOrNo{Question: question, Yes: yes}
	y.Intercept = New(y.render, y.handle)
	return y
}

func (y *YesOrNo) prompt() Text {
	return y.Prompt.or(Literal(fmt.Sprintf(`Enter "yes" or "no" or %s to abort the command.`, y.AbortToken)))
}

func (y *YesOrNo) render(ctx context.Context, conn core.Connection) {
	conn.Send(y.Question)
	y.prompt().Send(ctx, core.NewEventCaller(conn))
}

func (y *YesOrNo) handle(ctx context.Context, c *core.Caller) {
	answer := strings.ToLower(strings.TrimSpace(c.Text))
	switch {
	case answer == "":
		y.prompt().Send(ctx, c)
	case strings.HasPrefix(answer, "y"):
		y.Restore(ctx, c.Conn)
		if y.Yes != nil {
			y.Yes(ctx, c)
		}
	case y.No != nil:
		y.Restore(ctx, c.Conn)
		y.No(ctx, c)
	default:
		y.Abort(ctx, c)
	}
}
