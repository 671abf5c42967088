package spellcheck

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/pkg/log"
)

// Dictionary is a word list plus an optional personal dictionary.
type Dictionary struct {
	mu       sync.RWMutex
	words    map[string]struct{}
	list     []string
	personal core.WordRepository
}

func NewDictionary(words []string, personal core.WordRepository) *Dictionary {
	d := &Dictionary{
		words:    make(map[string]struct{}, len(words)),
		personal: personal,
	}
	for _, w := range words {
		d.insert(w)
	}
	return d
}

// LoadDictionary reads a word list from path, or from fallback when the
// file does not exist, and merges the personal dictionary into it.
func LoadDictionary(ctx context.Context, path string, fallback []byte, personal core.WordRepository) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.FromCtx(ctx).Warn().Str("path", path).Msg("Word list not found, using built-in list")
		data, err = fallback, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	words, err := readWords(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if personal != nil {
		own, err := personal.Words(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load personal dictionary: %w", err)
		}
		words = append(words, own...)
	}

	d := NewDictionary(words, personal)
	log.FromCtx(ctx).Debug().Int("words", d.Len()).Msg("Dictionary loaded")
	return d, nil
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return words, nil
}

func (d *Dictionary) insert(word string) {
	w := strings.ToLower(word)
	if _, ok := d.words[w]; ok {
		return
	}
	d.words[w] = struct{}{}
	d.list = append(d.list, w)
}

func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.list)
}

// Check reports whether word is spelled correctly.
func (d *Dictionary) Check(word string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.words[strings.ToLower(word)]
	return ok
}

// Add puts word into the personal dictionary.
func (d *Dictionary) Add(ctx context.Context, word string) error {
	if d.personal != nil {
		if err := d.personal.AddWord(ctx, word); err != nil {
			return err
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.insert(word)
	return nil
}

type suggestion struct {
	word     string
	distance int
	score    int
}

// Suggest returns up to limit known words close to word, best first.
func (d *Dictionary) Suggest(word string, limit int) []string {
	w := strings.ToLower(word)

	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]struct{})
	var found []suggestion

	// Words that contain w as a subsequence cover dropped letters.
	for _, m := range fuzzy.Find(w, d.list) {
		if dist := editDistance(w, m.Str); dist <= 2 {
			seen[m.Str] = struct{}{}
			found = append(found, suggestion{word: m.Str, distance: dist, score: m.Score})
		}
	}
	// The rest catches swapped, extra and wrong letters.
	for _, cand := range d.list {
		if _, ok := seen[cand]; ok || abs(len(cand)-len(w)) > 2 {
			continue
		}
		if dist := editDistance(w, cand); dist <= 2 {
			found = append(found, suggestion{word: cand, distance: dist})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		if found[i].score != found[j].score {
			return found[i].score > found[j].score
		}
		return found[i].word < found[j].word
	})

	out := make([]string, 0, limit)
	for _, s := range found {
		if len(out) == limit {
			break
		}
		if s.word == w {
			continue
		}
		out = append(out, matchCase(word, s.word))
	}
	return out
}

// editDistance is the optimal string alignment distance between a and b.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(rb)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// matchCase capitalizes suggestion when word starts with a capital letter.
func matchCase(word, suggestion string) string {
	if word == "" || suggestion == "" {
		return suggestion
	}
	if len(word) > 1 && strings.ToUpper(word) == word && strings.ToLower(word) != word {
		return strings.ToUpper(suggestion)
	}
	if r, _ := utf8.DecodeRuneInString(word); unicode.IsUpper(r) {
		return strings.ToUpper(suggestion[:1]) + suggestion[1:]
	}
	return suggestion
}
