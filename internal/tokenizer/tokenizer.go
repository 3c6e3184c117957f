package tokenizer

// Tokenizer is the core interface for text tokenization.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the size of the token ID space.
	VocabSize() int

	// Name identifies the tokenizer in configuration files and snapshots.
	Name() string
}

// Registered tokenizer names.
const (
	NameChar = "char"
)

// New returns the tokenizer registered under name: "char", a tiktoken
// encoding name, or a model name known to tiktoken ("gpt-4").
func New(name string) (Tokenizer, error) {
	if name == NameChar || name == "" {
		return Char{}, nil
	}
	tok, err := NewBPE(name)
	if err != nil {
		return nil, err
	}
	return tok, nil
}
