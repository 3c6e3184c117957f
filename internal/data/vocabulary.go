package data

import (
	"encoding/json"
	"slices"

	"github.com/pkg/errors"

	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/tokenizer"
)

// Vocabulary maps the token IDs that occur in a corpus onto dense indices
// [0, Size), in order of first occurrence.
type Vocabulary struct {
	tok   tokenizer.Tokenizer
	ids   []int32
	index map[int32]int
}

// NewVocabulary tokenizes the corpus with tok and collects its tokens.
func NewVocabulary(tok tokenizer.Tokenizer, corpus ...string) (*Vocabulary, error) {
	v := &Vocabulary{tok: tok, index: make(map[int32]int)}
	for _, text := range corpus {
		tokens, err := tok.Encode(text)
		if err != nil {
			return nil, errors.Wrap(err, "build vocabulary")
		}
		v.add(tokens)
	}
	if len(v.ids) == 0 {
		return nil, errs.Configuration("corpus", "no tokens in corpus")
	}
	return v, nil
}

func (v *Vocabulary) add(tokens []int32) {
	for _, id := range tokens {
		if _, ok := v.index[id]; !ok {
			v.index[id] = len(v.ids)
			v.ids = append(v.ids, id)
		}
	}
}

// Size returns the number of distinct tokens.
func (v *Vocabulary) Size() int {
	return len(v.ids)
}

// Tokenizer returns the underlying tokenizer.
func (v *Vocabulary) Tokenizer() tokenizer.Tokenizer {
	return v.tok
}

// Encode returns the dense indices of text. Tokens outside the vocabulary
// are a ConfigurationError.
func (v *Vocabulary) Encode(text string) ([]int, error) {
	tokens, err := v.tok.Encode(text)
	if err != nil {
		return nil, errors.Wrap(err, "encode")
	}
	out := make([]int, len(tokens))
	for i, id := range tokens {
		idx, ok := v.index[id]
		if !ok {
			return nil, errs.Configuration("text", "token %d at position %d is not in the vocabulary", id, i)
		}
		out[i] = idx
	}
	return out, nil
}

// Decode converts dense indices back to text.
func (v *Vocabulary) Decode(indices []int) (string, error) {
	tokens := make([]int32, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(v.ids) {
			return "", errs.Configuration("index", "%d out of range [0, %d)", idx, len(v.ids))
		}
		tokens[i] = v.ids[idx]
	}
	return v.tok.Decode(tokens)
}

// OneHot returns the indicator vector of index.
func (v *Vocabulary) OneHot(index int) []float64 {
	out := make([]float64, len(v.ids))
	out[index] = 1
	return out
}

// Sequence encodes text as next-token pairs: the input at step t is the
// one-hot of token t and the target is the one-hot of token t+1.
func (v *Vocabulary) Sequence(text string) (inputs, targets [][]float64, err error) {
	indices, err := v.Encode(text)
	if err != nil {
		return nil, nil, err
	}
	if len(indices) < 2 {
		return nil, nil, errs.Configuration("text", "need at least 2 tokens, got %d", len(indices))
	}
	for i := 0; i+1 < len(indices); i++ {
		inputs = append(inputs, v.OneHot(indices[i]))
		targets = append(targets, v.OneHot(indices[i+1]))
	}
	return inputs, targets, nil
}

type vocabularyJSON struct {
	Tokenizer string  `json:"tokenizer"`
	Tokens    []int32 `json:"tokens"`
}

// MarshalJSON stores the tokenizer name and the token IDs in index order.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(vocabularyJSON{Tokenizer: v.tok.Name(), Tokens: v.ids})
}

// UnmarshalJSON rebuilds the vocabulary and its tokenizer.
func (v *Vocabulary) UnmarshalJSON(b []byte) error {
	var raw vocabularyJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.Wrap(err, "decode vocabulary")
	}
	tok, err := tokenizer.New(raw.Tokenizer)
	if err != nil {
		return err
	}
	if len(raw.Tokens) == 0 {
		return errs.Configuration("vocabulary", "no tokens")
	}
	*v = Vocabulary{tok: tok, index: make(map[int32]int, len(raw.Tokens))}
	v.add(raw.Tokens)
	if len(v.ids) != len(raw.Tokens) {
		return errs.Configuration("vocabulary", "duplicate token IDs")
	}
	return nil
}

// Tokens returns a copy of the token IDs in index order.
func (v *Vocabulary) Tokens() []int32 {
	return slices.Clone(v.ids)
}
