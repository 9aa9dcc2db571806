package round

import (
	"memaheret/internal/hebrew"
	"memaheret/internal/wordlist"
)

// Composer builds a guess one key press at a time. Keys map to base letters;
// a letter typed into the last position takes its word-final form unless the
// dictionary spells that word with the base form.
type Composer struct {
	dict    hebrew.Dictionary
	letters []rune
}

func NewComposer(dict hebrew.Dictionary) *Composer {
	return &Composer{dict: dict, letters: make([]rune, 0, wordlist.WordLength)}
}

// Type appends the letter key types. It returns false when the key is not a
// letter or the word is already full.
func (c *Composer) Type(key string) bool {
	if c.Full() {
		return false
	}
	r, ok := hebrew.KeyToLetter(key)
	if !ok {
		return false
	}
	if len(c.letters) == wordlist.WordLength-1 {
		r = hebrew.Finalize(r, string(c.letters), c.dict)
	}
	c.letters = append(c.letters, r)
	return true
}

// Erase removes the last letter, if any.
func (c *Composer) Erase() bool {
	if len(c.letters) == 0 {
		return false
	}
	c.letters = c.letters[:len(c.letters)-1]
	return true
}

func (c *Composer) Reset() { c.letters = c.letters[:0] }

func (c *Composer) Len() int { return len(c.letters) }

func (c *Composer) Full() bool { return len(c.letters) == wordlist.WordLength }

func (c *Composer) Word() string { return string(c.letters) }

// Compose types every rune of raw and returns the resulting word.
func Compose(raw string, dict hebrew.Dictionary) string {
	c := NewComposer(dict)
	for _, r := range raw {
		c.Type(string(r))
	}
	return c.Word()
}
