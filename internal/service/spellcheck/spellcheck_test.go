package spellcheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/internal/service/command"
	"github.com/sandevgo/gsb/internal/service/intercept"
	"github.com/sandevgo/gsb/test"
)

type memWords struct {
	words []string
	err   error
}

func (m *memWords) AddWord(_ context.Context, word string) error {
	if m.err != nil {
		return m.err
	}
	m.words = append(m.words, word)
	return nil
}

func (m *memWords) HasWord(_ context.Context, word string) (bool, error) {
	for _, w := range m.words {
		if w == word {
			return true, nil
		}
	}
	return false, nil
}

func (m *memWords) Words(context.Context) ([]string, error) {
	return m.words, nil
}

func newConn(t *testing.T, dict *Dictionary) *test.Conn {
	t.Helper()
	sess := &test.Session{Base: command.NewParser()}
	if dict != nil {
		sess.Checker = Provider(dict)(nil)
	}
	conn := test.NewConn("1", sess)
	conn.SetDispatcher(context.Background(), nil)
	return conn
}

func TestDictionary_Suggest(t *testing.T) {
	dict := NewDictionary([]string{"hello", "help", "world", "the", "then", "is"}, nil)

	assert.True(t, dict.Check("Hello"))
	assert.False(t, dict.Check("helo"))

	assert.Equal(t, "hello", dict.Suggest("helo", 8)[0])
	assert.Contains(t, dict.Suggest("teh", 8), "the")
	assert.Equal(t, "World", dict.Suggest("Wrld", 8)[0])
	assert.Equal(t, "HELLO", dict.Suggest("HELO", 1)[0])
	assert.Len(t, dict.Suggest("helo", 1), 1)
	assert.Empty(t, dict.Suggest("xyzzyplugh", 8))
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("same", "same"))
	assert.Equal(t, 1, editDistance("helo", "hello"))
	assert.Equal(t, 1, editDistance("teh", "the"))
	assert.Equal(t, 3, editDistance("", "abc"))
	assert.Equal(t, 3, editDistance("kitten", "sitting"))
}

func TestLoadDictionary(t *testing.T) {
	ctx := context.Background()
	personal := &memWords{words: []string{"zorkmid"}}

	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\napple\n\nbanana\n"), 0644))

	dict, err := LoadDictionary(ctx, path, nil, personal)
	require.NoError(t, err)
	assert.Equal(t, 3, dict.Len())
	assert.True(t, dict.Check("banana"))
	assert.True(t, dict.Check("zorkmid"))

	dict, err = LoadDictionary(ctx, filepath.Join(t.TempDir(), "missing.txt"), []byte("cherry\n"), nil)
	require.NoError(t, err)
	assert.True(t, dict.Check("cherry"))
}

func TestLoadDictionary_BundledList(t *testing.T) {
	dict, err := LoadDictionary(context.Background(), test.GetWordListPath(t), nil, nil)
	require.NoError(t, err)
	assert.True(t, dict.Check("hello"))
	assert.Contains(t, dict.Suggest("helo", 8), "hello")
}

func TestReplaceWord(t *testing.T) {
	assert.Equal(t, "hello, hello world", replaceWord("helo, helo world", "helo", "hello"))
	assert.Equal(t, "heloise hello", replaceWord("heloise helo", "helo", "hello"))
	assert.Equal(t, "'hello'", replaceWord("'helo'", "helo", "hello"))
	assert.Equal(t, "costs $5", replaceWord("costs $x", "x", "5"))
}

func TestChecker_FromReader(t *testing.T) {
	ctx := context.Background()
	dict := NewDictionary([]string{"hello", "world", "is", "here"}, nil)
	conn := newConn(t, dict)

	var got string
	r := intercept.NewMultilineReader(func(_ context.Context, c *core.Caller) { got = c.Text })
	conn.SetDispatcher(ctx, r)
	conn.Line(ctx, "helo wrld")
	conn.Take()

	conn.Line(ctx, ".spell")
	assert.Equal(t, []string{
		"Misspelled word: helo.",
		"Suggestions",
		"[1] hello",
		"[2] here",
		"Actions",
		"[3] Ignore",
		"[4] Add to personal dictionary",
		"[5] Edit word",
		"Type a number or @abort to abort.",
	}, conn.Take())

	conn.Line(ctx, "1")
	assert.Equal(t, []string{
		"Replaced helo with hello.",
		"Misspelled word: wrld.",
		"Suggestions",
		"[1] world",
		"Actions",
		"[2] Ignore",
		"[3] Add to personal dictionary",
		"[4] Edit word",
		"Type a number or @abort to abort.",
	}, conn.Take())

	conn.Line(ctx, "edit")
	assert.Equal(t, []string{MsgEditWord}, conn.Take())

	conn.Line(ctx, "world")
	assert.Equal(t, []string{
		"Replaced wrld with world.",
		intercept.MsgSpellComplete,
		"Enter lines of text. Type . on a blank line to finish or @abort to exit.",
	}, conn.Take())
	assert.Same(t, r, conn.Dispatcher())

	conn.Line(ctx, ".")
	assert.Equal(t, "hello world", got)
}

func TestChecker_IgnoreAndAdd(t *testing.T) {
	ctx := context.Background()
	personal := &memWords{}
	dict := NewDictionary([]string{"a"}, personal)
	conn := newConn(t, nil)

	var resumed *core.Caller
	c := New(dict, "zork zork grue", func(_ context.Context, caller *core.Caller) { resumed = caller })
	conn.SetDispatcher(ctx, c)
	assert.Equal(t, []string{
		"Misspelled word: zork.",
		"Actions",
		"[1] Ignore",
		"[2] Add to personal dictionary",
		"[3] Edit word",
		"Type a number or @abort to abort.",
	}, conn.Take())

	conn.Line(ctx, "ignore")
	assert.Equal(t, "Misspelled word: grue.", conn.Take()[0])

	conn.Line(ctx, "add")
	require.NotNil(t, resumed)
	assert.Equal(t, "zork zork grue", resumed.Text)
	assert.Equal(t, []string{"grue"}, personal.words)
	assert.True(t, dict.Check("grue"))
}

func TestChecker_AddFailure(t *testing.T) {
	ctx := context.Background()
	dict := NewDictionary(nil, &memWords{err: errors.New("disk full")})
	conn := newConn(t, nil)

	done := false
	conn.SetDispatcher(ctx, New(dict, "zork", func(context.Context, *core.Caller) { done = true }))
	conn.Take()

	conn.Line(ctx, "2")
	assert.Equal(t, []string{"Could not add zork to the dictionary."}, conn.Take())
	assert.True(t, done)
}

func TestChecker_Abort(t *testing.T) {
	ctx := context.Background()
	dict := NewDictionary([]string{"a"}, nil)
	conn := newConn(t, nil)

	var resumed string
	c := New(dict, "zork", func(_ context.Context, caller *core.Caller) { resumed = caller.Text })
	conn.SetDispatcher(ctx, c)
	conn.Take()

	conn.Line(ctx, "@abort")
	assert.Equal(t, []string{intercept.MsgAborted}, conn.Take())
	assert.Equal(t, "zork", resumed)
}

func TestChecker_EditAbort(t *testing.T) {
	ctx := context.Background()
	dict := NewDictionary([]string{"a"}, nil)
	conn := newConn(t, nil)

	c := New(dict, "zork", nil)
	conn.SetDispatcher(ctx, c)
	menu := conn.Take()

	conn.Line(ctx, "3")
	assert.Equal(t, []string{MsgEditWord}, conn.Take())

	conn.Line(ctx, "@abort")
	lines := conn.Take()
	require.NotEmpty(t, lines)
	assert.Equal(t, intercept.MsgAborted, lines[0])
	assert.Equal(t, menu, lines[1:])
	assert.Same(t, c, conn.Dispatcher())
}

func TestChecker_NothingToFix(t *testing.T) {
	ctx := context.Background()
	dict := NewDictionary([]string{"all", "good"}, nil)
	base := command.NewParser()
	conn := test.NewConn("1", &test.Session{Base: base})
	conn.SetDispatcher(ctx, nil)

	// Without a resume callback the checker simply steps aside.
	conn.SetDispatcher(ctx, New(dict, "All good", nil))
	assert.Empty(t, conn.Take())
	assert.Same(t, base, conn.Dispatcher())
}
