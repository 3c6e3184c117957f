// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer provides the text tokenizers used to build vocabularies
// for LSTM text models.
//
// Supported tokenizers:
//   - Char: one token per Unicode code point
//   - BPE: tiktoken encodings, by encoding name ("cl100k_base") or model name ("gpt-4")
//
// Example usage:
//
//	tok, err := tokenizer.New("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tokens, err := tok.Encode("Hello, world!")
package tokenizer

import (
	"github.com/born-ml/synapse/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// Char tokenizes text into Unicode code points.
type Char = tokenizer.Char

// NameChar is the name of the Char tokenizer.
const NameChar = tokenizer.NameChar

// New returns the tokenizer with the given name: "char" (or empty), a
// tiktoken encoding name, or a model name known to tiktoken.
func New(name string) (Tokenizer, error) {
	return tokenizer.New(name)
}

// BPE tokenizes text with a tiktoken byte-pair encoding.
type BPE = tokenizer.BPE

// NewBPE loads a tiktoken encoding by encoding name or model name.
func NewBPE(name string) (*BPE, error) {
	return tokenizer.NewBPE(name)
}
