// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn exposes the activation functions and parameter types shared by
// the feedforward and LSTM networks.
//
// Activations are configured by name in option structs and job files:
//
//	opts := feedforward.DefaultOptions()
//	opts.Activation, _ = nn.ParseActivation("tanh")
package nn

import (
	"github.com/born-ml/synapse/internal/nn"
)

// Activation is an activation function with its optional LeakyReLU slope.
type Activation = nn.Activation

// ActivationKind enumerates the supported activation functions.
type ActivationKind = nn.ActivationKind

// Supported activations.
const (
	Sigmoid   = nn.Sigmoid
	Tanh      = nn.Tanh
	ReLU      = nn.ReLU
	LeakyReLU = nn.LeakyReLU
	Linear    = nn.Linear
	Softmax   = nn.Softmax
)

// DefaultLeakyReLUAlpha is the negative slope used when none is configured.
const DefaultLeakyReLUAlpha = nn.DefaultLeakyReLUAlpha

// ParseActivation returns the activation with the given configuration name:
// sigmoid, tanh, relu, leaky-relu, linear or softmax.
func ParseActivation(name string) (Activation, error) {
	return nn.ParseActivation(name)
}

// Parameter is a named trainable tensor.
type Parameter = nn.Parameter

// Gradients holds one gradient tensor per parameter, in parameter order.
type Gradients = nn.Gradients

// ZerosLike allocates zero gradients matching params.
func ZerosLike(params []*Parameter) Gradients {
	return nn.ZerosLike(params)
}
