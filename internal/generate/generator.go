package generate

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/synapse/internal/data"
	"github.com/born-ml/synapse/internal/errs"
)

// Stop reasons reported in Result.Reason.
const (
	ReasonMaxTokens  = "max_tokens"
	ReasonStopString = "stop_string"
)

// Config configures text generation.
type Config struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int `json:"maxTokens" yaml:"maxTokens"`

	// MinTokens is the minimum number of tokens before a stop string counts.
	MinTokens int `json:"minTokens" yaml:"minTokens"`

	// StopStrings end generation when the generated text ends with one of them.
	StopStrings []string `json:"stopStrings" yaml:"stopStrings"`

	// Window is the number of most recent tokens fed to the model. 0 = all.
	Window int `json:"window" yaml:"window"`

	// EchoPrompt includes the prompt in the output.
	EchoPrompt bool `json:"echoPrompt" yaml:"echoPrompt"`

	// Sampling is the sampling configuration.
	Sampling SamplingConfig `json:"sampling" yaml:"sampling"`
}

// DefaultConfig returns defaults for generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens: 100,
		Sampling:  DefaultSamplingConfig(),
	}
}

// Result is a single result from streaming generation.
type Result struct {
	Token  string // Decoded token text
	Index  int    // Vocabulary index
	Done   bool   // Is generation complete
	Reason string // Stop reason, set when Done
	Error  error  // Error if any
}

// Model is a sequence model mapping a sequence of one-hot inputs to a
// distribution over the vocabulary for the next token. *lstm.Network
// implements it.
type Model interface {
	Run(inputs [][]float64) ([]float64, error)
}

// TextGenerator generates text with a sequence model.
type TextGenerator struct {
	model   Model
	vocab   *data.Vocabulary
	sampler *Sampler
}

// NewTextGenerator creates a text generator.
func NewTextGenerator(model Model, vocab *data.Vocabulary, sampling SamplingConfig) (*TextGenerator, error) {
	if vocab == nil {
		return nil, errs.Configuration("vocabulary", "text generation needs a vocabulary")
	}
	sampler, err := NewSampler(sampling)
	if err != nil {
		return nil, err
	}
	return &TextGenerator{model: model, vocab: vocab, sampler: sampler}, nil
}

// Text generates length tokens following prompt and returns them as text.
func Text(model Model, vocab *data.Vocabulary, prompt string, length int, sampling SamplingConfig) (string, error) {
	g, err := NewTextGenerator(model, vocab, sampling)
	if err != nil {
		return "", err
	}
	cfg := DefaultConfig()
	cfg.MaxTokens = length
	cfg.Sampling = sampling
	return g.Generate(prompt, cfg)
}

// Generate generates text from a prompt.
func (g *TextGenerator) Generate(prompt string, config Config) (string, error) {
	var result strings.Builder
	if config.EchoPrompt {
		result.WriteString(prompt)
	}

	err := g.generate(context.Background(), prompt, config, func(res Result) bool {
		result.WriteString(res.Token)
		return !res.Done
	})
	if err != nil {
		return "", err
	}

	return result.String(), nil
}

// GenerateStream generates text and returns a channel of results. The
// channel is closed when generation ends or ctx is canceled; a failure is
// delivered as a final Result with Error set.
func (g *TextGenerator) GenerateStream(ctx context.Context, prompt string, config Config) (<-chan Result, error) {
	if err := g.validate(prompt, config); err != nil {
		return nil, err
	}

	ch := make(chan Result, 1)

	go func() {
		defer close(ch)

		if config.EchoPrompt {
			select {
			case ch <- Result{Token: prompt, Index: -1}:
			case <-ctx.Done():
				return
			}
		}

		err := g.generate(ctx, prompt, config, func(res Result) bool {
			select {
			case ch <- res:
				return !res.Done
			case <-ctx.Done():
				return false
			}
		})
		if err != nil && ctx.Err() == nil {
			select {
			case ch <- Result{Done: true, Error: err}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}

func (g *TextGenerator) validate(prompt string, config Config) error {
	if prompt == "" {
		return errs.Configuration("prompt", "empty prompt")
	}
	if config.MaxTokens < 0 || config.MinTokens < 0 || config.Window < 0 {
		return errs.Configuration("maxTokens", "token counts must be >= 0")
	}
	return nil
}

// generate is the core generation loop.
func (g *TextGenerator) generate(
	ctx context.Context,
	prompt string,
	config Config,
	callback func(Result) bool,
) error {
	if err := g.validate(prompt, config); err != nil {
		return err
	}
	indices, err := g.vocab.Encode(prompt)
	if err != nil {
		return errors.Wrap(err, "encode prompt")
	}

	inputs := make([][]float64, 0, len(indices)+config.MaxTokens)
	for _, idx := range indices {
		inputs = append(inputs, g.vocab.OneHot(idx))
	}

	var generated strings.Builder
	for i := 0; i < config.MaxTokens; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		window := inputs
		if config.Window > 0 && len(window) > config.Window {
			window = window[len(window)-config.Window:]
		}
		probs, err := g.model.Run(window)
		if err != nil {
			return err
		}
		if len(probs) != g.vocab.Size() {
			return errs.ShapeMismatch("output", []int{g.vocab.Size()}, []int{len(probs)})
		}

		next := g.sampler.Sample(probs)
		token, err := g.vocab.Decode([]int{next})
		if err != nil {
			return errors.Wrap(err, "decode token")
		}
		generated.WriteString(token)
		inputs = append(inputs, g.vocab.OneHot(next))

		done, reason := checkStopConditions(generated.String(), i+1, config)
		if !callback(Result{Token: token, Index: next, Done: done, Reason: reason}) || done {
			break
		}
	}

	return nil
}

// checkStopConditions checks if generation should stop after count tokens.
func checkStopConditions(text string, count int, config Config) (bool, string) {
	if count >= config.MinTokens {
		for _, stop := range config.StopStrings {
			if stop != "" && strings.HasSuffix(text, stop) {
				return true, ReasonStopString
			}
		}
	}

	if count >= config.MaxTokens {
		return true, ReasonMaxTokens
	}

	return false, ""
}
