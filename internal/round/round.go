// Package round is the state machine for one day's attempts at the word of
// the day.
package round

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"memaheret/internal/hebrew"
	"memaheret/internal/match"
	"memaheret/internal/wordlist"
)

// MaxAttempts is the number of guesses a round allows.
const MaxAttempts = 6

var (
	ErrTooShort        = errors.New("not enough letters")
	ErrNotInDictionary = errors.New("not in word list")
	ErrRoundOver       = errors.New("round is over")
)

// State is where a round is in its lifecycle.
type State int

const (
	Active State = iota
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "active"
	}
}

// Dictionary is what a round needs from the word list.
type Dictionary interface {
	Contains(word string) bool
	ContainsRaw(word string) bool
}

// Attempt is one accepted guess and its feedback.
type Attempt struct {
	Word     string
	Verdicts [match.WordLength]match.Verdict
}

// Round holds the attempts made against one target word. It is not safe for
// concurrent use; callers serialise access per player.
type Round struct {
	date     string
	target   string
	dict     Dictionary
	attempts []Attempt
	state    State

	done     chan struct{}
	doneOnce sync.Once
}

// New starts an empty, active round.
func New(date, target string, dict Dictionary) *Round {
	return &Round{
		date:     date,
		target:   target,
		dict:     dict,
		attempts: make([]Attempt, 0, MaxAttempts),
		done:     make(chan struct{}),
	}
}

// Restore rebuilds a round from previously accepted guesses. Entries that are
// not five letters long are dropped, and replay stops once the round ends.
func Restore(date, target string, dict Dictionary, guesses []string) *Round {
	r := New(date, target, dict)
	for _, g := range guesses {
		if r.IsTerminal() {
			break
		}
		if utf8.RuneCountInString(g) != wordlist.WordLength {
			continue
		}
		r.record(g)
	}
	return r
}

// Submit validates raw input and records it as the next attempt. Input with
// anything but letter keys, or more letters than a word, is not a word.
// Rejected input leaves the round untouched.
func (r *Round) Submit(raw string) (Attempt, error) {
	if r.IsTerminal() {
		return Attempt{}, ErrRoundOver
	}
	raw = strings.TrimSpace(raw)
	if !typeable(raw) {
		return Attempt{}, ErrNotInDictionary
	}
	word := Compose(raw, r.dict)
	if utf8.RuneCountInString(word) < wordlist.WordLength {
		return Attempt{}, ErrTooShort
	}
	if !r.dict.Contains(word) {
		return Attempt{}, ErrNotInDictionary
	}
	return r.record(word), nil
}

// typeable reports whether every rune of raw is a letter key and there are
// no more of them than a word holds.
func typeable(raw string) bool {
	n := 0
	for _, ch := range raw {
		if _, ok := hebrew.KeyToLetter(string(ch)); !ok {
			return false
		}
		n++
	}
	return n <= wordlist.WordLength
}

func (r *Round) record(word string) Attempt {
	a := Attempt{Word: word, Verdicts: match.Evaluate(word, r.target)}
	r.attempts = append(r.attempts, a)

	switch {
	case r.isTarget(word):
		r.finish(Won)
	case len(r.attempts) >= MaxAttempts:
		r.finish(Lost)
	}
	return a
}

func (r *Round) finish(s State) {
	r.state = s
	r.doneOnce.Do(func() { close(r.done) })
}

func (r *Round) isTarget(word string) bool {
	return hebrew.Normalize(word) == hebrew.Normalize(r.target)
}

// Done is closed when the round reaches Won or Lost.
func (r *Round) Done() <-chan struct{} { return r.done }

func (r *Round) State() State { return r.state }

func (r *Round) IsTerminal() bool { return r.state != Active }

func (r *Round) Date() string { return r.date }

func (r *Round) Target() string { return r.target }

func (r *Round) Len() int { return len(r.attempts) }

// Attempts returns a copy of the attempts in submission order.
func (r *Round) Attempts() []Attempt {
	out := make([]Attempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

// Guesses returns the attempted words in submission order.
func (r *Round) Guesses() []string {
	out := make([]string, len(r.attempts))
	for i, a := range r.attempts {
		out[i] = a.Word
	}
	return out
}

// StatusMap is the best verdict seen so far for each base letter.
type StatusMap [hebrew.NumLetters]match.Verdict

// Get returns the status of l, Unset when it has not been tried.
func (m StatusMap) Get(l hebrew.Letter) match.Verdict {
	if l < 0 || int(l) >= hebrew.NumLetters {
		return match.Unset
	}
	return m[l]
}

// Strings maps each tried letter to its verdict name.
func (m StatusMap) Strings() map[string]string {
	out := make(map[string]string)
	for _, l := range hebrew.Letters() {
		if v := m[l]; v != match.Unset {
			out[l.String()] = v.String()
		}
	}
	return out
}

// LetterStatus folds every attempt except a winning one into a per-letter
// status. Exact beats Other beats Wrong, so a letter is never downgraded.
func (r *Round) LetterStatus() StatusMap {
	var m StatusMap
	for _, a := range r.attempts {
		if r.isTarget(a.Word) {
			continue
		}
		i := 0
		for _, ch := range a.Word {
			l := hebrew.LetterOf(ch)
			if l != hebrew.NoLetter && a.Verdicts[i] > m[l] {
				m[l] = a.Verdicts[i]
			}
			i++
		}
	}
	return m
}
