package tokenizer

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"

	"github.com/born-ml/synapse/internal/errs"
)

// idLimits holds, per tiktoken encoding, one past the largest token ID it
// can emit. Special tokens sit above the mergeable ranks, so the limit is
// larger than the rank count.
var idLimits = map[string]int{
	tiktoken.MODEL_O200K_BASE:  200019,
	tiktoken.MODEL_CL100K_BASE: 100277,
	tiktoken.MODEL_P50K_BASE:   50281,
	tiktoken.MODEL_P50K_EDIT:   50284,
	tiktoken.MODEL_R50K_BASE:   50257,
}

// tiktoken maps "gpt2" to an encoding it cannot load; the ranks are r50k's.
var encodingAliases = map[string]string{
	"gpt2": tiktoken.MODEL_R50K_BASE,
}

// resolveEncoding returns the tiktoken encoding behind a tokenizer name,
// which is either an encoding name or a model name.
func resolveEncoding(name string) (string, bool) {
	if _, ok := idLimits[name]; ok {
		return name, true
	}
	enc, ok := tiktoken.MODEL_TO_ENCODING[name]
	if !ok {
		// Longest prefix wins, independent of map order.
		best := ""
		for prefix, e := range tiktoken.MODEL_PREFIX_TO_ENCODING {
			if strings.HasPrefix(name, prefix) && len(prefix) > len(best) {
				best, enc = prefix, e
			}
		}
		ok = best != ""
	}
	if alias, found := encodingAliases[enc]; found {
		enc = alias
	}
	if _, known := idLimits[enc]; !ok || !known {
		return "", false
	}
	return enc, true
}

// BPE tokenizes corpus text with a tiktoken byte-pair encoding.
//
// Special-token markers such as "<|endoftext|>" in a corpus are encoded as
// ordinary text, so every ID a BPE emits decodes back to the same bytes.
// Ranks are downloaded on first use and cached under TIKTOKEN_CACHE_DIR.
type BPE struct {
	name     string
	encoding string
	limit    int
	codec    *tiktoken.Tiktoken
}

// NewBPE loads the encoding named by name, or the encoding tiktoken
// assigns to the model of that name ("gpt-4" loads cl100k_base).
func NewBPE(name string) (*BPE, error) {
	enc, ok := resolveEncoding(name)
	if !ok {
		return nil, errs.Configuration("tokenizer", "unknown tokenizer %q", name)
	}
	codec, err := tiktoken.GetEncoding(enc)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s ranks for tokenizer %q", enc, name)
	}
	return &BPE{name: name, encoding: enc, limit: idLimits[enc], codec: codec}, nil
}

// Encode splits text into BPE token IDs.
func (b *BPE) Encode(text string) ([]int32, error) {
	ids := b.codec.EncodeOrdinary(text)
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id) //nolint:gosec // ids are below b.limit
	}
	return out, nil
}

// Decode joins token IDs back into text. IDs outside the encoding are an
// error rather than silently dropped.
func (b *BPE) Decode(tokens []int32) (string, error) {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		if tok < 0 || int(tok) >= b.limit {
			return "", errors.Errorf("token %d at position %d is outside %s", tok, i, b.encoding)
		}
		ids[i] = int(tok)
	}
	return b.codec.Decode(ids), nil
}

// VocabSize returns one past the largest ID the encoding can produce.
func (b *BPE) VocabSize() int {
	return b.limit
}

// Name returns the name the tokenizer was created with, so New can
// rebuild it from a saved vocabulary.
func (b *BPE) Name() string {
	return b.name
}

// Encoding returns the resolved tiktoken encoding name.
func (b *BPE) Encoding() string {
	return b.encoding
}
