package search

import (
	"strings"
	"unicode"
)

// Letter keys of a QWERTY keyboard and the Ukrainian ЙЦУКЕН letters on the same keys.
// Keys that carry punctuation on QWERTY ([ ] ; ' , .) are left out, so х ї ж є б ю
// are kept as typed.
const (
	latinKeys    = "qwertyuiopasdfghjklzxcvbnm"
	cyrillicKeys = "йцукенгшщзфівапролдячсмить"
)

var (
	latinToCyrillic = make(map[rune]rune, len(latinKeys))
	cyrillicToLatin = make(map[rune]rune, len(latinKeys))
)

func init() {
	lat := []rune(latinKeys)
	cyr := []rune(cyrillicKeys)
	for i, l := range lat {
		latinToCyrillic[l] = cyr[i]
		cyrillicToLatin[cyr[i]] = l
	}
}

// Translate retypes a word as if it had been entered with the other keyboard
// layout: "ghbdsn" becomes "привіт" and "руддщ" becomes "hello". The script of
// the first letter picks the direction.
func Translate(word string) string {
	table := latinToCyrillic
	for _, r := range word {
		if unicode.IsLetter(r) {
			if unicode.Is(unicode.Cyrillic, r) {
				table = cyrillicToLatin
			}
			break
		}
	}

	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		lower := unicode.ToLower(r)
		mapped, ok := table[lower]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if lower != r {
			mapped = unicode.ToUpper(mapped)
		}
		b.WriteRune(mapped)
	}
	return b.String()
}
