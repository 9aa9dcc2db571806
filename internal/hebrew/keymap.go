package hebrew

// keymap folds a key press onto a base letter. Latin keys follow the
// standard Israeli keyboard layout so players without a Hebrew layout can
// still type.
var keymap = map[string]rune{
	"e": 'ק', "r": 'ר', "t": 'א', "y": 'ט', "u": 'ו', "i": 'נ', "o": 'מ', "p": 'פ',
	"a": 'ש', "s": 'ד', "d": 'ג', "f": 'כ', "g": 'ע', "h": 'י', "j": 'ח', "k": 'ל',
	"l": 'כ', ";": 'פ', "z": 'ז', "x": 'ס', "c": 'ב', "v": 'ה', "b": 'נ', "n": 'מ',
	"m": 'צ', ",": 'ת', ".": 'צ',
}

// KeyToLetter maps a key press to the base letter it types. Hebrew letters
// in either form map to their base form.
func KeyToLetter(key string) (rune, bool) {
	if r, ok := keymap[key]; ok {
		return r, true
	}
	runes := []rune(key)
	if len(runes) != 1 || !IsLetter(runes[0]) {
		return 0, false
	}
	return Base(runes[0]), true
}
