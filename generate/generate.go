// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package generate samples text from LSTM models trained on a vocabulary.
//
// Components:
//   - Sampler: sampling strategies (greedy, temperature, top-k, top-p)
//   - TextGenerator: autoregressive generation with stop strings and streaming
//
// Example usage:
//
//	net, err := lstm.Load("poem.snp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, err := generate.Text(net, net.Vocabulary(), "Once", 200,
//	    generate.SamplingConfig{Temperature: 0.8, TopK: 10, Seed: 42})
package generate

import (
	"github.com/born-ml/synapse/internal/data"
	"github.com/born-ml/synapse/internal/generate"
	"github.com/born-ml/synapse/internal/tokenizer"
)

// SamplingConfig configures the sampling strategy.
//
// Parameters:
//   - Temperature: Controls randomness (0 = greedy, 1 = model distribution, >1 = flatter)
//   - TopK: Keep only the K most likely tokens (0 = disabled)
//   - TopP: Nucleus sampling threshold (0 or 1 = disabled)
//   - Seed: Random seed (-1 = random)
type SamplingConfig = generate.SamplingConfig

// DefaultSamplingConfig returns sampling from the model distribution.
func DefaultSamplingConfig() SamplingConfig {
	return generate.DefaultSamplingConfig()
}

// Sampler picks token indices from probability vectors.
type Sampler = generate.Sampler

// NewSampler creates a sampler with the given configuration.
func NewSampler(config SamplingConfig) (*Sampler, error) {
	return generate.NewSampler(config)
}

// Config configures text generation.
type Config = generate.Config

// DefaultConfig returns defaults for generation.
func DefaultConfig() Config {
	return generate.DefaultConfig()
}

// Result is a single result from streaming generation.
type Result = generate.Result

// Model is a sequence model returning a distribution over the vocabulary.
type Model = generate.Model

// Vocabulary maps tokenizer IDs to the one-hot positions a model was
// trained on.
type Vocabulary = data.Vocabulary

// NewVocabulary collects the distinct tokens of corpus in order of first
// appearance.
func NewVocabulary(tok tokenizer.Tokenizer, corpus ...string) (*Vocabulary, error) {
	return data.NewVocabulary(tok, corpus...)
}

// TextGenerator generates text with a sequence model.
type TextGenerator = generate.TextGenerator

// NewTextGenerator creates a text generator.
func NewTextGenerator(model Model, vocab *Vocabulary, sampling SamplingConfig) (*TextGenerator, error) {
	return generate.NewTextGenerator(model, vocab, sampling)
}

// Text generates length tokens following prompt.
func Text(model Model, vocab *Vocabulary, prompt string, length int, sampling SamplingConfig) (string, error) {
	return generate.Text(model, vocab, prompt, length, sampling)
}
