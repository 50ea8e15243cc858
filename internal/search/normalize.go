// Package search implements keyword search over posts: query words are cleaned,
// filtered, matched as case-insensitive substrings and cached as keywords.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// apostrophes used inside Ukrainian words (ім'я, п’ять, обʼєкт)
const apostrophes = "'’ʼ"

func isApostrophe(r rune) bool {
	return strings.ContainsRune(apostrophes, r)
}

var stripSet = runes.Predicate(func(r rune) bool {
	if isApostrophe(r) {
		return false
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsControl(r)
})

// RemovePunctuation drops punctuation and symbols from a single query word.
// Apostrophes survive inside a word but not at its edges.
func RemovePunctuation(word string) string {
	t := transform.Chain(norm.NFC, runes.Remove(stripSet))
	out, _, err := transform.String(t, word)
	if err != nil {
		return ""
	}
	return strings.TrimFunc(out, isApostrophe)
}

// Fold returns the case folded NFC form of s with apostrophe variants unified.
// The database registers it as the SQL function fold() so both sides of a
// substring match are folded the same way.
func Fold(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if isApostrophe(r) {
			return '\''
		}
		return r
	}, s)
	return cases.Fold().String(s)
}

// Normalize prepares a raw query word for keyword lookup
func Normalize(word string) string {
	return Fold(RemovePunctuation(word))
}

// KeyWordFilter decides which words are worth a keyword row
type KeyWordFilter struct {
	minLength int
	stop      map[string]struct{}
}

// NewKeyWordFilter builds a filter from the minimum word length and extra stop words
func NewKeyWordFilter(minLength int, extraStopWords []string) *KeyWordFilter {
	if minLength < 1 {
		minLength = 1
	}
	f := &KeyWordFilter{
		minLength: minLength,
		stop:      make(map[string]struct{}, len(defaultStopWords)+len(extraStopWords)),
	}
	for _, w := range defaultStopWords {
		f.stop[Fold(w)] = struct{}{}
	}
	for _, w := range extraStopWords {
		f.stop[Fold(w)] = struct{}{}
	}
	return f
}

// IsKeyWord reports whether a normalized word may be searched for
func (f *KeyWordFilter) IsKeyWord(word string) bool {
	if len([]rune(word)) < f.minLength {
		return false
	}
	if _, ok := f.stop[word]; ok {
		return false
	}
	hasLetter := false
	for _, r := range word {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	return hasLetter
}

var defaultStopWords = []string{
	// uk
	"і", "й", "та", "але", "або", "що", "як", "це", "цей", "ця", "ці", "той", "так", "ні", "не", "ще",
	"вже", "для", "від", "до", "на", "під", "над", "при", "про", "без", "через", "після", "перед",
	"якщо", "коли", "тому", "чому", "де", "хто", "який", "яка", "яке", "які", "мені", "мене", "мій",
	"моя", "моє", "мої", "ти", "ви", "ми", "вони", "він", "вона", "воно", "його", "її", "їх", "бути",
	"був", "була", "було", "були", "є", "можна", "треба", "потрібно", "дуже", "теж", "також", "щоб",
	// en
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "has", "her", "was", "one",
	"our", "out", "his", "how", "its", "who", "did", "get", "him", "she", "too", "use", "with", "what",
	"this", "that", "from", "have", "when", "where", "which", "your", "they", "them", "then", "there",
}
