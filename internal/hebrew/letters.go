// Package hebrew handles the letterforms of the Hebrew alphabet: word-final
// variants, their base forms, and the keyboard layout used to type them.
package hebrew

import "strings"

// Letter is one of the 22 base letters of the alphabet, in alphabetical order.
type Letter int

// NumLetters is the size of the base alphabet.
const NumLetters = 22

// NoLetter is returned for runes outside the alphabet.
const NoLetter Letter = -1

const alphabet = "אבגדהוזחטיכלמנסעפצקרשת"

var (
	baseRunes = []rune(alphabet)

	// word-final form -> base form
	finalToBase = map[rune]rune{'ך': 'כ', 'ם': 'מ', 'ן': 'נ', 'ף': 'פ', 'ץ': 'צ'}

	// base form -> word-final form
	baseToFinal = map[rune]rune{'כ': 'ך', 'מ': 'ם', 'נ': 'ן', 'פ': 'ף', 'צ': 'ץ'}

	letterIndex = func() map[rune]Letter {
		idx := make(map[rune]Letter, NumLetters)
		for i, r := range baseRunes {
			idx[r] = Letter(i)
		}
		return idx
	}()
)

// Rune returns the base-form rune of l.
func (l Letter) Rune() rune {
	if l < 0 || int(l) >= NumLetters {
		return 0
	}
	return baseRunes[l]
}

func (l Letter) String() string {
	if r := l.Rune(); r != 0 {
		return string(r)
	}
	return ""
}

// LetterOf returns the Letter for r, folding final forms onto their base.
func LetterOf(r rune) Letter {
	if l, ok := letterIndex[Base(r)]; ok {
		return l
	}
	return NoLetter
}

// Letters returns every base letter in alphabetical order.
func Letters() []Letter {
	out := make([]Letter, NumLetters)
	for i := range out {
		out[i] = Letter(i)
	}
	return out
}

// IsLetter reports whether r belongs to the alphabet in either form.
func IsLetter(r rune) bool {
	return LetterOf(r) != NoLetter
}

// Base maps a word-final form to its base form; other runes are returned as is.
func Base(r rune) rune {
	if b, ok := finalToBase[r]; ok {
		return b
	}
	return r
}

// FinalOf returns the word-final form of a base letter, if it has one.
func FinalOf(base rune) (rune, bool) {
	f, ok := baseToFinal[base]
	return f, ok
}

// IsFinal reports whether r is a word-final form.
func IsFinal(r rune) bool {
	_, ok := finalToBase[r]
	return ok
}

// Normalize replaces every word-final form in word with its base form.
func Normalize(word string) string {
	return strings.Map(Base, word)
}

// Dictionary is the raw membership test Finalize consults.
type Dictionary interface {
	ContainsRaw(word string) bool
}

// Finalize picks the letterform for a letter typed in the last position of a
// word. The final variant is used unless the dictionary holds the word that
// irregularly ends in the base form.
func Finalize(base rune, preceding string, dict Dictionary) rune {
	final, ok := FinalOf(base)
	if !ok {
		return base
	}
	if dict != nil && dict.ContainsRaw(preceding+string(base)) {
		return base
	}
	return final
}

// Definalize returns word with its last letter in word-final form where the
// alphabet has one, consulting dict for words that end in a base form.
func Definalize(word string, dict Dictionary) string {
	runes := []rune(Normalize(word))
	if len(runes) == 0 {
		return word
	}
	last := len(runes) - 1
	runes[last] = Finalize(runes[last], string(runes[:last]), dict)
	return string(runes)
}
