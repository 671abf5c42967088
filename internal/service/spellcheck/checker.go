package spellcheck

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/internal/service/intercept"
	"github.com/sandevgo/gsb/internal/service/session"
	"github.com/sandevgo/gsb/pkg/log"
)

const (
	maxSuggestions = 8

	MsgEditWord  = "Enter the new word:"
	MsgAddFailed = "Could not add %s to the dictionary."
)

var wordPattern = regexp.MustCompile(`[a-zA-Z'-]+`)

// Checker walks the misspelled words of a text one menu at a time and
// hands the corrected text to resume.
type Checker struct {
	*intercept.Menu

	dict    *Dictionary
	text    string
	word    string
	ignored map[string]struct{}
	resume  func(ctx context.Context, c *core.Caller)

	// editing is set while a nested reader asks for a replacement, so the
	// menu is not redrawn when that reader hands control back.
	editing bool
}

func New(dict *Dictionary, text string, resume func(ctx context.Context, c *core.Caller)) *Checker {
	c := &Checker{
		Menu:    intercept.NewMenu(""),
		dict:    dict,
		text:    text,
		ignored: make(map[string]struct{}),
		resume:  resume,
	}
	c.Persistent = true
	c.Recursive = true
	c.OnAbort = func(ctx context.Context, caller *core.Caller) {
		c.finish(ctx, caller.Conn)
	}
	return c
}

// Provider plugs the checker into a session.
func Provider(dict *Dictionary) session.SpellCheckerProvider {
	return func(*core.Caller) core.SpellCheckerFactory {
		return func(text string, resume func(ctx context.Context, c *core.Caller)) core.Dispatcher {
			return New(dict, text, resume)
		}
	}
}

func (c *Checker) Text() string {
	return c.text
}

func (c *Checker) OnAttach(ctx context.Context, conn core.Connection, previous core.Dispatcher) {
	if c.editing {
		return
	}
	if !c.build() {
		c.finish(ctx, conn)
		return
	}
	c.Menu.OnAttach(ctx, conn, previous)
}

// build fills the menu for the next misspelled word. It reports false when
// none is left.
func (c *Checker) build() bool {
	c.word = ""
	c.Clear()

	for _, raw := range wordPattern.FindAllString(c.text, -1) {
		w := strings.Trim(raw, "'-")
		if w == "" || c.dict.Check(w) {
			continue
		}
		if _, ok := c.ignored[strings.ToLower(w)]; ok {
			continue
		}
		c.word = w
		break
	}
	if c.word == "" {
		return false
	}

	c.Title = fmt.Sprintf("Misspelled word: %s.", c.word)

	var last *intercept.MenuItem
	suggestions := c.dict.Suggest(c.word, maxSuggestions)
	if len(suggestions) > 0 {
		c.AddLabel("Suggestions", nil)
	}
	for _, s := range suggestions {
		last = c.AddItem(s, func(ctx context.Context, caller *core.Caller) {
			c.replace(ctx, caller.Conn, s)
		})
	}
	c.AddLabel("Actions", last)
	c.AddItem("Ignore", c.ignore)
	c.AddItem("Add to personal dictionary", c.add)
	c.AddItem("Edit word", c.edit)
	return true
}

func (c *Checker) finish(ctx context.Context, conn core.Connection) {
	if c.resume == nil {
		c.Restore(ctx, conn)
		return
	}
	c.resume(ctx, core.NewCaller(conn, c.text))
}

// again moves on to the next misspelled word.
func (c *Checker) again(ctx context.Context, conn core.Connection) {
	conn.SetDispatcher(ctx, c)
}

func (c *Checker) replace(ctx context.Context, conn core.Connection, with string) {
	c.text = replaceWord(c.text, c.word, with)
	conn.Send("Replaced %s with %s.", c.word, with)
	c.again(ctx, conn)
}

func (c *Checker) ignore(ctx context.Context, caller *core.Caller) {
	c.ignored[strings.ToLower(c.word)] = struct{}{}
	c.again(ctx, caller.Conn)
}

func (c *Checker) add(ctx context.Context, caller *core.Caller) {
	if err := c.dict.Add(ctx, c.word); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("word", c.word).Msg("Failed to add word")
		caller.Send(MsgAddFailed, c.word)
		c.ignored[strings.ToLower(c.word)] = struct{}{}
	}
	c.again(ctx, caller.Conn)
}

func (c *Checker) edit(ctx context.Context, caller *core.Caller) {
	r := intercept.NewReader(func(ctx context.Context, answer *core.Caller) {
		c.editing = false
		with := strings.TrimSpace(answer.Text)
		if with == "" {
			c.again(ctx, answer.Conn)
			return
		}
		c.replace(ctx, answer.Conn, with)
	})
	r.Prompt = intercept.Literal(MsgEditWord)
	r.Aborted = intercept.Callback(func(_ context.Context, aborted *core.Caller) {
		c.editing = false
		aborted.Send(intercept.MsgAborted)
	})

	c.editing = true
	caller.Conn.SetDispatcher(ctx, r)
}

// replaceWord replaces whole-word occurrences of old in text.
func replaceWord(text, old, with string) string {
	return wordPattern.ReplaceAllStringFunc(text, func(raw string) string {
		if strings.Trim(raw, "'-") != old {
			return raw
		}
		return strings.Replace(raw, old, with, 1)
	})
}
