package generate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/synapse/internal/data"
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/lstm"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/tokenizer"
	"github.com/born-ml/synapse/internal/train"
)

// cycleModel predicts the vocabulary index after the last input's, wrapping
// around, with all probability mass on it.
type cycleModel struct {
	size    int
	lengths []int
}

func (m *cycleModel) Run(inputs [][]float64) ([]float64, error) {
	m.lengths = append(m.lengths, len(inputs))
	last := inputs[len(inputs)-1]
	out := make([]float64, m.size)
	out[(argmax(last)+1)%m.size] = 1
	return out, nil
}

// brokenModel behaves like cycleModel for its first call and fails after.
type brokenModel struct {
	cycleModel
	calls  int
	failed chan struct{}
}

func (m *brokenModel) Run(inputs [][]float64) ([]float64, error) {
	m.calls++
	if m.calls > 1 {
		close(m.failed)
		return nil, errs.Uninitialized("run")
	}
	return m.cycleModel.Run(inputs)
}

func newBrokenGenerator(t *testing.T) (*TextGenerator, *brokenModel) {
	t.Helper()
	vocab, err := data.NewVocabulary(tokenizer.Char{}, "abc")
	require.NoError(t, err)
	model := &brokenModel{cycleModel: cycleModel{size: vocab.Size()}, failed: make(chan struct{})}
	g, err := NewTextGenerator(model, vocab, SamplingConfig{Temperature: 0, TopP: 1})
	require.NoError(t, err)
	return g, model
}

func newGenerator(t *testing.T) (*TextGenerator, *cycleModel) {
	t.Helper()
	vocab, err := data.NewVocabulary(tokenizer.Char{}, "abc")
	require.NoError(t, err)
	model := &cycleModel{size: vocab.Size()}
	g, err := NewTextGenerator(model, vocab, SamplingConfig{Temperature: 0, TopP: 1})
	require.NoError(t, err)
	return g, model
}

func TestTextGenerator_Generate(t *testing.T) {
	g, _ := newGenerator(t)

	result, err := g.Generate("ab", Config{MaxTokens: 5, Sampling: SamplingConfig{TopP: 1}})
	require.NoError(t, err)
	assert.Equal(t, "cabca", result)
}

func TestTextGenerator_EchoPrompt(t *testing.T) {
	g, _ := newGenerator(t)

	result, err := g.Generate("a", Config{MaxTokens: 2, EchoPrompt: true})
	require.NoError(t, err)
	assert.Equal(t, "abc", result)
}

func TestTextGenerator_StopString(t *testing.T) {
	g, _ := newGenerator(t)

	result, err := g.Generate("a", Config{MaxTokens: 100, StopStrings: []string{"ca"}})
	require.NoError(t, err)
	assert.Equal(t, "bca", result)
}

func TestTextGenerator_MinTokens(t *testing.T) {
	g, _ := newGenerator(t)

	result, err := g.Generate("a", Config{MaxTokens: 100, MinTokens: 4, StopStrings: []string{"b"}})
	require.NoError(t, err)
	assert.Equal(t, "bcab", result)
}

func TestTextGenerator_Window(t *testing.T) {
	g, model := newGenerator(t)

	_, err := g.Generate("abcab", Config{MaxTokens: 4, Window: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 3, 3}, model.lengths)

	model.lengths = nil
	_, err = g.Generate("ab", Config{MaxTokens: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, model.lengths)
}

func TestTextGenerator_GenerateStream(t *testing.T) {
	g, _ := newGenerator(t)

	stream, err := g.GenerateStream(context.Background(), "a", Config{MaxTokens: 4})
	require.NoError(t, err)

	var tokens []string
	var last Result
	for result := range stream {
		require.NoError(t, result.Error)
		tokens = append(tokens, result.Token)
		last = result
	}

	assert.Equal(t, []string{"b", "c", "a", "b"}, tokens)
	assert.True(t, last.Done)
	assert.Equal(t, ReasonMaxTokens, last.Reason)
}

func TestTextGenerator_GenerateStreamCanceled(t *testing.T) {
	g, _ := newGenerator(t)
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := g.GenerateStream(ctx, "a", Config{MaxTokens: 1000})
	require.NoError(t, err)

	<-stream
	cancel()

	n := 0
	for range stream {
		n++
	}
	assert.Less(t, n, 1000)
}

func TestTextGenerator_GenerateStreamError(t *testing.T) {
	g, _ := newBrokenGenerator(t)

	stream, err := g.GenerateStream(context.Background(), "a", Config{MaxTokens: 5})
	require.NoError(t, err)

	var results []Result
	for result := range stream {
		results = append(results, result)
	}
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].Token)
	assert.True(t, results[1].Done)
	assert.True(t, errs.IsUninitialized(results[1].Error))
}

func TestTextGenerator_GenerateStreamAbandoned(t *testing.T) {
	g, model := newBrokenGenerator(t)
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := g.GenerateStream(ctx, "a", Config{MaxTokens: 5})
	require.NoError(t, err)

	// The first token fills the buffer; the failure then has nowhere to go
	// until the consumer cancels.
	<-model.failed
	cancel()
	time.Sleep(20 * time.Millisecond)

	var results []Result
	for result := range stream {
		results = append(results, result)
	}
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Error)
}

func TestTextGenerator_Errors(t *testing.T) {
	g, _ := newGenerator(t)

	_, err := g.Generate("", Config{MaxTokens: 3})
	assert.True(t, errs.IsConfiguration(err))

	_, err = g.Generate("xyz", Config{MaxTokens: 3})
	assert.Error(t, err, "prompt outside the vocabulary")

	_, err = g.Generate("a", Config{MaxTokens: -1})
	assert.True(t, errs.IsConfiguration(err))

	_, err = NewTextGenerator(&cycleModel{size: 3}, nil, DefaultSamplingConfig())
	assert.True(t, errs.IsConfiguration(err))

	vocab, err := data.NewVocabulary(tokenizer.Char{}, "abc")
	require.NoError(t, err)
	wrong, err := NewTextGenerator(&cycleModel{size: 5}, vocab, DefaultSamplingConfig())
	require.NoError(t, err)
	_, err = wrong.Generate("a", Config{MaxTokens: 1})
	assert.True(t, errs.IsShapeMismatch(err))
}

func TestText_WithLSTM(t *testing.T) {
	vocab, err := data.NewVocabulary(tokenizer.Char{}, "hello")
	require.NoError(t, err)

	opts := lstm.DefaultOptions()
	opts.HiddenLayers = []int{6}
	opts.Activation = nn.Activation{Kind: nn.Softmax}
	opts.Seed = 11
	net, err := lstm.New(opts)
	require.NoError(t, err)
	require.NoError(t, net.SetVocabulary(vocab))

	inputs, targets, err := vocab.Sequence("hello")
	require.NoError(t, err)
	_, err = net.Train([]lstm.Sequence{{Inputs: inputs, Targets: targets}}, train.Options{Iterations: 10, Patience: -1})
	require.NoError(t, err)

	text, err := Text(net, vocab, "he", 6, SamplingConfig{Temperature: 1, TopP: 1, Seed: 5})
	require.NoError(t, err)
	assert.Len(t, []rune(text), 6)
	for _, r := range text {
		assert.Contains(t, "helo", string(r))
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 100, config.MaxTokens)
	assert.Equal(t, DefaultSamplingConfig(), config.Sampling)
}
