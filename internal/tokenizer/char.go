package tokenizer

import (
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Char tokenizes text into Unicode code points.
type Char struct{}

// Encode returns one token per rune.
func (Char) Encode(text string) ([]int32, error) {
	return []int32([]rune(text)), nil
}

// Decode converts code points back to text.
func (Char) Decode(tokens []int32) (string, error) {
	runes := make([]rune, len(tokens))
	for i, tok := range tokens {
		if tok < 0 || tok > unicode.MaxRune || !utf8.ValidRune(tok) {
			return "", errors.Errorf("invalid code point %d at position %d", tok, i)
		}
		runes[i] = tok
	}
	return string(runes), nil
}

// VocabSize returns the number of Unicode code points.
func (Char) VocabSize() int {
	return unicode.MaxRune + 1
}

// Name returns "char".
func (Char) Name() string {
	return NameChar
}
