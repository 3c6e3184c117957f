// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package lstm provides stacked LSTM networks trained by backpropagation
// through time.
//
// # Basic Usage
//
//	net, err := lstm.New(lstm.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	seq, err := lstm.NextStepSequence([][]float64{{0.1}, {0.2}, {0.3}, {0.4}})
//	stats, err := net.Train([]lstm.Sequence{seq}, train.Options{Iterations: 500})
//	next, err := net.Run([][]float64{{0.3}, {0.4}})
//
// Text models attach a vocabulary with SetVocabulary and are sampled with
// the generate package.
package lstm

import (
	"github.com/born-ml/synapse/internal/lstm"
)

// Network is an LSTM network.
type Network = lstm.Network

// Options configures a Network.
type Options = lstm.Options

// Sequence is one training sequence; a nil target contributes no loss.
type Sequence = lstm.Sequence

// Model holds every trainable tensor of a network.
type Model = lstm.Model

// Gate identifies one of the four learned gates of an LSTM cell.
type Gate = lstm.Gate

// Gates, in parameter order.
const (
	InputGate  = lstm.InputGate
	ForgetGate = lstm.ForgetGate
	OutputGate = lstm.OutputGate
	CellWrite  = lstm.CellWrite
)

// Trace records the gate values and states of one forward pass.
type Trace = lstm.Trace

// Snapshot is the serialized form of a Network.
type Snapshot = lstm.Snapshot

// DefaultOptions returns a linear-output network trained with Adam.
func DefaultOptions() Options {
	return lstm.DefaultOptions()
}

// New validates opts and returns a network, initialized when both sizes
// are set.
func New(opts Options) (*Network, error) {
	return lstm.New(opts)
}

// NextStepSequence frames a time series for next-step prediction.
func NextStepSequence(series [][]float64) (Sequence, error) {
	return lstm.NextStepSequence(series)
}

// FromSnapshot rebuilds a network from its snapshot.
func FromSnapshot(s *Snapshot) (*Network, error) {
	return lstm.FromSnapshot(s)
}

// Load reads a network from a snapshot file.
func Load(path string) (*Network, error) {
	return lstm.Load(path)
}
