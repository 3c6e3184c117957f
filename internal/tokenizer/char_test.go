package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/synapse/internal/errs"
)

func TestChar_Roundtrip(t *testing.T) {
	var tok Tokenizer = Char{}

	for _, text := range []string{"", "hello", "Hello 世界! 🌍", "a\nb\tc"} {
		tokens, err := tok.Encode(text)
		require.NoError(t, err)
		assert.Len(t, tokens, len([]rune(text)))

		decoded, err := tok.Decode(tokens)
		require.NoError(t, err)
		assert.Equal(t, text, decoded)
	}
}

func TestChar_Decode_Invalid(t *testing.T) {
	_, err := Char{}.Decode([]int32{'a', -1})
	assert.Error(t, err)

	_, err = Char{}.Decode([]int32{0xD800})
	assert.Error(t, err, "surrogate halves are not valid runes")
}

func TestNew(t *testing.T) {
	tok, err := New("char")
	require.NoError(t, err)
	assert.Equal(t, "char", tok.Name())

	tok, err = New("")
	require.NoError(t, err)
	assert.IsType(t, Char{}, tok)

	_, err = New("no-such-tokenizer")
	assert.True(t, errs.IsConfiguration(err))
}
