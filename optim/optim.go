// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the optimization algorithms that update network
// parameters from their gradients.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - RMSprop and AdaGrad: per-parameter adaptive learning rates
//   - Optimizer interface for custom optimizers
//
// Networks build their optimizer from the praxis named in their options;
// New does the same for custom training loops:
//
//	opt, err := optim.New(optim.Config{Praxis: optim.Adam, LR: 0.001})
//	opt.Initialize(params)
//	err = opt.Update(params, grads) // once per batch
package optim

import (
	"github.com/born-ml/synapse/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Praxis names an optimization algorithm.
type Praxis = optim.Praxis

// Supported algorithms.
const (
	SGD     = optim.SGD
	Adam    = optim.Adam
	RMSprop = optim.RMSprop
	AdaGrad = optim.AdaGrad
)

// Config selects and configures an optimizer.
type Config = optim.Config

// New creates the optimizer named by cfg.Praxis.
func New(cfg Config) (Optimizer, error) {
	return optim.New(cfg)
}

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *optim.SGDOptimizer {
	return optim.NewSGD(config)
}

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(config AdamConfig) *optim.AdamOptimizer {
	return optim.NewAdam(config)
}

// RMSpropConfig contains configuration for RMSprop optimizer.
type RMSpropConfig = optim.RMSpropConfig

// NewRMSprop creates a new RMSprop optimizer.
func NewRMSprop(config RMSpropConfig) *optim.RMSpropOptimizer {
	return optim.NewRMSprop(config)
}

// AdaGradConfig contains configuration for AdaGrad optimizer.
type AdaGradConfig = optim.AdaGradConfig

// NewAdaGrad creates a new AdaGrad optimizer.
func NewAdaGrad(config AdaGradConfig) *optim.AdaGradOptimizer {
	return optim.NewAdaGrad(config)
}
