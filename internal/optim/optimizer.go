// Package optim implements the parameter update rules used by the training
// engines.
//
// This package provides:
//   - Optimizer interface: Initialize/Update over an index-aligned parameter list
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - RMSprop: running average of squared gradients
//   - AdaGrad: accumulated squared gradients
//
// Every optimizer keeps auxiliary buffers shaped exactly like the parameters
// it updates. The buffers are allocated by Initialize and must be allocated
// again whenever the topology changes.
//
// Example usage:
//
//	opt, err := optim.New(optim.Config{Praxis: optim.Adam, LR: 0.01})
//	opt.Initialize(params)
//
//	grads := nn.ZerosLike(params)
//	for range batches {
//	    grads.Zero()
//	    // ... accumulate dLoss/dθ into grads ...
//	    if err := opt.Update(params, grads); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"strings"

	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Gradients passed to Update are dLoss/dθ; optimizers step against them.
type Optimizer interface {
	// Initialize allocates zero-filled state shaped like params and resets
	// any step counter.
	Initialize(params []*nn.Parameter)

	// Update walks params and grads in lock-step and mutates params in
	// place. Call it exactly once per batch.
	Update(params []*nn.Parameter, grads nn.Gradients) error

	// LearningRate returns the current learning rate.
	LearningRate() float64

	// SetLearningRate updates the learning rate, used for per-epoch decay.
	SetLearningRate(lr float64)

	// Praxis returns the algorithm name.
	Praxis() Praxis
}

// Praxis names an optimization algorithm.
type Praxis string

// Supported algorithms.
const (
	SGD     Praxis = "sgd"
	Adam    Praxis = "adam"
	RMSprop Praxis = "rmsprop"
	AdaGrad Praxis = "adagrad"
)

// ParsePraxis validates an algorithm name.
func ParsePraxis(name string) (Praxis, error) {
	switch p := Praxis(strings.ToLower(name)); p {
	case SGD, Adam, RMSprop, AdaGrad:
		return p, nil
	default:
		return "", errs.Configuration("praxis", "unknown optimizer %q", name)
	}
}

// UnmarshalText decodes and validates an algorithm name.
func (p *Praxis) UnmarshalText(text []byte) error {
	parsed, err := ParsePraxis(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Config holds the hyperparameters of every algorithm. Fields not used by
// the selected praxis are ignored; zero values fall back to defaults.
type Config struct {
	Praxis   Praxis
	LR       float64 // Learning rate
	Momentum float64 // SGD momentum, [0, 1]
	Beta1    float64 // Adam first moment decay (default: 0.9)
	Beta2    float64 // Adam second moment decay (default: 0.999)
	Epsilon  float64 // Numerical stability term (default: 1e-8)
	Decay    float64 // RMSprop cache decay (default: 0.99)
}

// Default hyperparameters.
const (
	DefaultBeta1        = 0.9
	DefaultBeta2        = 0.999
	DefaultEpsilon      = 1e-8
	DefaultRMSpropDecay = 0.99
)

// New creates the optimizer named by cfg.Praxis (SGD when empty).
func New(cfg Config) (Optimizer, error) {
	if cfg.LR <= 0 {
		return nil, errs.Configuration("learningRate", "must be > 0, got %v", cfg.LR)
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = DefaultEpsilon
	}

	switch cfg.Praxis {
	case SGD, "":
		if cfg.Momentum < 0 || cfg.Momentum > 1 {
			return nil, errs.Configuration("momentum", "must be in [0, 1], got %v", cfg.Momentum)
		}
		return NewSGD(SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum}), nil
	case Adam:
		if cfg.Beta1 == 0 {
			cfg.Beta1 = DefaultBeta1
		}
		if cfg.Beta2 == 0 {
			cfg.Beta2 = DefaultBeta2
		}
		if cfg.Beta1 < 0 || cfg.Beta1 >= 1 || cfg.Beta2 < 0 || cfg.Beta2 >= 1 {
			return nil, errs.Configuration("beta1/beta2", "must be in [0, 1), got %v/%v", cfg.Beta1, cfg.Beta2)
		}
		return NewAdam(AdamConfig{LR: cfg.LR, Beta1: cfg.Beta1, Beta2: cfg.Beta2, Epsilon: cfg.Epsilon}), nil
	case RMSprop:
		if cfg.Decay == 0 {
			cfg.Decay = DefaultRMSpropDecay
		}
		if cfg.Decay < 0 || cfg.Decay >= 1 {
			return nil, errs.Configuration("decay", "must be in [0, 1), got %v", cfg.Decay)
		}
		return NewRMSprop(RMSpropConfig{LR: cfg.LR, Decay: cfg.Decay, Epsilon: cfg.Epsilon}), nil
	case AdaGrad:
		return NewAdaGrad(AdaGradConfig{LR: cfg.LR, Epsilon: cfg.Epsilon}), nil
	default:
		return nil, errs.Configuration("praxis", "unknown optimizer %q", string(cfg.Praxis))
	}
}

// state is a set of buffers shaped like a parameter list.
type state []*tensor.Dense

func newState(params []*nn.Parameter) state {
	return state(nn.ZerosLike(params))
}

// checkUpdate validates an Update call against the optimizer's buffers.
func checkUpdate(op string, buffers state, params []*nn.Parameter, grads nn.Gradients) error {
	if buffers == nil {
		return errs.Uninitialized(op)
	}
	if len(buffers) != len(params) {
		return errs.ShapeMismatch("optimizer state", []int{len(buffers)}, []int{len(params)})
	}
	for i, p := range params {
		if !p.Shape().Equal(buffers[i].Shape()) {
			return errs.ShapeMismatch(p.Name(), buffers[i].Shape(), p.Shape())
		}
	}
	return grads.CheckShapes(params)
}
