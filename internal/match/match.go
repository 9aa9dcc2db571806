// Package match scores a guess against the target word.
package match

import (
	"fmt"

	"memaheret/internal/hebrew"
)

// WordLength is the number of positions Evaluate scores.
const WordLength = 5

// Verdict is the feedback for one letter position of a guess.
type Verdict int

const (
	Unset Verdict = iota
	Wrong
	Other
	Exact
)

func (v Verdict) String() string {
	switch v {
	case Exact:
		return "exact"
	case Other:
		return "other"
	case Wrong:
		return "wrong"
	default:
		return ""
	}
}

// ParseVerdict is the inverse of Verdict.String.
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "exact":
		return Exact, nil
	case "other":
		return Other, nil
	case "wrong":
		return Wrong, nil
	case "":
		return Unset, nil
	}
	return Unset, fmt.Errorf("unknown verdict %q", s)
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(b []byte) error {
	parsed, err := ParseVerdict(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Evaluate compares guess with target after normalizing both. A position is
// Exact when the letters agree. Remaining positions are Other while the
// target still has an unmatched copy of the letter, Wrong otherwise, so a
// repeated guess letter never earns more credit than the target holds.
// Words shorter than WordLength score Wrong in the missing positions.
func Evaluate(guess, target string) [WordLength]Verdict {
	g := []rune(hebrew.Normalize(guess))
	t := []rune(hebrew.Normalize(target))

	var result [WordLength]Verdict
	pool := make(map[rune]int, WordLength)

	for i := range WordLength {
		if i < len(g) && i < len(t) && g[i] == t[i] {
			result[i] = Exact
			continue
		}
		if i < len(t) {
			pool[t[i]]++
		}
	}

	for i := range WordLength {
		if result[i] == Exact {
			continue
		}
		if i < len(g) && pool[g[i]] > 0 {
			pool[g[i]]--
			result[i] = Other
			continue
		}
		result[i] = Wrong
	}
	return result
}

// Solved reports whether every verdict is Exact.
func Solved(v [WordLength]Verdict) bool {
	for _, x := range v {
		if x != Exact {
			return false
		}
	}
	return true
}
