package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemovePunctuation(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"hello!", "hello"},
		{"(golang)", "golang"},
		{"c++", "c"},
		{"e-mail", "email"},
		{"ім'я", "ім'я"},
		{"'цитата'", "цитата"},
		{"п’ять", "п’ять"},
		{"100%", "100"},
		{"...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RemovePunctuation(tt.in), "input %q", tt.in)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "привіт", Fold("ПРИВІТ"))
	assert.Equal(t, "golang", Fold("GoLang"))
	assert.Equal(t, "ім'я", Fold("Ім’я"))
	assert.Equal(t, "об'єкт", Normalize("Обʼєкт,"))
}

func TestKeyWordFilter(t *testing.T) {
	f := NewKeyWordFilter(3, []string{"Порада"})
	tests := []struct {
		word string
		want bool
	}{
		{"golang", true},
		{"кіт", true},
		{"go", false},     // too short
		{"the", false},    // stop word
		{"також", false},  // stop word
		{"порада", false}, // extra stop word, folded
		{"2024", false},   // no letters
		{"v8", false},     // too short
		{"html5", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.IsKeyWord(tt.word), "word %q", tt.word)
	}
}

func TestKeyWordFilterMinimumLength(t *testing.T) {
	assert.True(t, NewKeyWordFilter(0, nil).IsKeyWord("x"))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ghbdsn", "привіт"},
		{"руддщ", "hello"},
		{"Ghbdsn", "Привіт"},
		{"rdfhnbhf", "квартира"},
		{"123", "123"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Translate(tt.in), "input %q", tt.in)
	}
}
