// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package feedforward provides fully connected networks trained by
// backpropagation.
//
// # Basic Usage
//
//	net, err := feedforward.New(feedforward.Options{HiddenLayers: []int{3}, Seed: 42})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stats, err := net.Train([]feedforward.Sample{
//	    {Input: []float64{0, 0}, Output: []float64{0}},
//	    {Input: []float64{0, 1}, Output: []float64{1}},
//	    {Input: []float64{1, 0}, Output: []float64{1}},
//	    {Input: []float64{1, 1}, Output: []float64{0}},
//	}, train.Options{ErrorThresh: 0.01})
//	out, err := net.Run([]float64{1, 0})
//
// Sizes left at zero are inferred from the first sample. Trained networks
// are saved with Save and restored with Load.
package feedforward

import (
	"github.com/born-ml/synapse/internal/feedforward"
)

// Network is a fully connected feedforward network.
type Network = feedforward.Network

// Options configures a Network.
type Options = feedforward.Options

// Sample is one training example.
type Sample = feedforward.Sample

// Trace records the activations of one forward pass.
type Trace = feedforward.Trace

// Snapshot is the serialized form of a Network.
type Snapshot = feedforward.Snapshot

// DefaultOptions returns sigmoid SGD with momentum 0.1 and learning rate 0.3.
func DefaultOptions() Options {
	return feedforward.DefaultOptions()
}

// New validates opts and returns a network, initialized when both sizes
// are set.
func New(opts Options) (*Network, error) {
	return feedforward.New(opts)
}

// FromSnapshot rebuilds a network from its snapshot.
func FromSnapshot(s *Snapshot) (*Network, error) {
	return feedforward.FromSnapshot(s)
}

// Load reads a network from a snapshot file.
func Load(path string) (*Network, error) {
	return feedforward.Load(path)
}
