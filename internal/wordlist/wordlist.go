// Package wordlist holds the fixed dictionary of five-letter words that both
// supplies the word of the day and decides which guesses are accepted.
package wordlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/samber/lo"

	"memaheret/internal/hebrew"
	"memaheret/internal/types"
)

// WordLength is the number of letters in every word.
const WordLength = 5

var ErrEmpty = errors.New("word list is empty")

// List is an immutable, validated word list.
type List struct {
	words      []string
	raw        map[string]struct{}
	normalized map[string]int
	skipped    []string
}

// Load reads a {"words": [...]} document from path.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var wl types.WordList
	if err := json.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return New(wl.Words)
}

// New builds a List from words. Entries that are not five alphabet letters,
// carry a final form before the last position, or repeat an earlier entry
// once normalized are skipped and reported by Skipped.
func New(words []string) (*List, error) {
	l := &List{
		raw:        make(map[string]struct{}, len(words)),
		normalized: make(map[string]int, len(words)),
	}
	l.words = lo.Filter(words, func(w string, _ int) bool {
		if !Valid(w) {
			l.skipped = append(l.skipped, w)
			return false
		}
		n := hebrew.Normalize(w)
		if _, dup := l.normalized[n]; dup {
			l.skipped = append(l.skipped, w)
			return false
		}
		l.normalized[n] = len(l.normalized)
		l.raw[w] = struct{}{}
		return true
	})
	if len(l.words) == 0 {
		return nil, ErrEmpty
	}
	return l, nil
}

// Valid reports whether w is a well-formed word: five alphabet letters with
// word-final forms only in the last position.
func Valid(w string) bool {
	if utf8.RuneCountInString(w) != WordLength {
		return false
	}
	i := 0
	for _, r := range w {
		if !hebrew.IsLetter(r) {
			return false
		}
		if hebrew.IsFinal(r) && i != WordLength-1 {
			return false
		}
		i++
	}
	return true
}

// Contains reports whether the normalized form of word is in the list.
func (l *List) Contains(word string) bool {
	_, ok := l.normalized[hebrew.Normalize(word)]
	return ok
}

// ContainsRaw reports whether word appears in the list exactly as spelled.
func (l *List) ContainsRaw(word string) bool {
	_, ok := l.raw[word]
	return ok
}

// Canonical returns the list's spelling of word, matched by normalized form.
func (l *List) Canonical(word string) (string, bool) {
	i, ok := l.normalized[hebrew.Normalize(word)]
	if !ok {
		return "", false
	}
	return l.words[i], true
}

func (l *List) At(i int) string { return l.words[i] }

func (l *List) Len() int { return len(l.words) }

// Words returns a copy of the list in its original order.
func (l *List) Words() []string {
	out := make([]string, len(l.words))
	copy(out, l.words)
	return out
}

// Skipped returns the entries New rejected.
func (l *List) Skipped() []string { return l.skipped }
