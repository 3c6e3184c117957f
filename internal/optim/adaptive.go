package optim

import (
	"math"

	"github.com/born-ml/synapse/internal/nn"
)

// RMSpropOptimizer scales each step by a running average of squared
// gradients:
//
//	cache = decay * cache + (1-decay) * g²
//	param = param - lr * g / (sqrt(cache) + eps)
type RMSpropOptimizer struct {
	lr    float64
	decay float64
	eps   float64
	cache state
}

// RMSpropConfig holds configuration for the RMSprop optimizer.
type RMSpropConfig struct {
	LR      float64
	Decay   float64 // Cache decay (default: 0.99)
	Epsilon float64 // Default: 1e-8
}

// NewRMSprop creates a new RMSprop optimizer.
func NewRMSprop(config RMSpropConfig) *RMSpropOptimizer {
	if config.Decay == 0 {
		config.Decay = DefaultRMSpropDecay
	}
	if config.Epsilon == 0 {
		config.Epsilon = DefaultEpsilon
	}
	return &RMSpropOptimizer{lr: config.LR, decay: config.Decay, eps: config.Epsilon}
}

// Initialize allocates a zero cache shaped like params.
func (r *RMSpropOptimizer) Initialize(params []*nn.Parameter) {
	r.cache = newState(params)
}

// Update applies one RMSprop step.
func (r *RMSpropOptimizer) Update(params []*nn.Parameter, grads nn.Gradients) error {
	if err := checkUpdate("rmsprop update", r.cache, params, grads); err != nil {
		return err
	}
	for i, p := range params {
		paramData := p.Tensor().Data()
		cache := r.cache[i].Data()
		for j, g := range grads[i].Data() {
			cache[j] = r.decay*cache[j] + (1-r.decay)*g*g
			paramData[j] -= r.lr * g / (math.Sqrt(cache[j]) + r.eps)
		}
	}
	return nil
}

// LearningRate returns the current learning rate.
func (r *RMSpropOptimizer) LearningRate() float64 { return r.lr }

// SetLearningRate updates the learning rate.
func (r *RMSpropOptimizer) SetLearningRate(lr float64) { r.lr = lr }

// Praxis returns RMSprop.
func (r *RMSpropOptimizer) Praxis() Praxis { return RMSprop }

// AdaGradOptimizer scales each step by the accumulated squared gradients:
//
//	cache = cache + g²
//	param = param - lr * g / (sqrt(cache) + eps)
type AdaGradOptimizer struct {
	lr    float64
	eps   float64
	cache state
}

// AdaGradConfig holds configuration for the AdaGrad optimizer.
type AdaGradConfig struct {
	LR      float64
	Epsilon float64 // Default: 1e-8
}

// NewAdaGrad creates a new AdaGrad optimizer.
func NewAdaGrad(config AdaGradConfig) *AdaGradOptimizer {
	if config.Epsilon == 0 {
		config.Epsilon = DefaultEpsilon
	}
	return &AdaGradOptimizer{lr: config.LR, eps: config.Epsilon}
}

// Initialize allocates a zero accumulator shaped like params.
func (a *AdaGradOptimizer) Initialize(params []*nn.Parameter) {
	a.cache = newState(params)
}

// Update applies one AdaGrad step.
func (a *AdaGradOptimizer) Update(params []*nn.Parameter, grads nn.Gradients) error {
	if err := checkUpdate("adagrad update", a.cache, params, grads); err != nil {
		return err
	}
	for i, p := range params {
		paramData := p.Tensor().Data()
		cache := a.cache[i].Data()
		for j, g := range grads[i].Data() {
			cache[j] += g * g
			paramData[j] -= a.lr * g / (math.Sqrt(cache[j]) + a.eps)
		}
	}
	return nil
}

// LearningRate returns the current learning rate.
func (a *AdaGradOptimizer) LearningRate() float64 { return a.lr }

// SetLearningRate updates the learning rate.
func (a *AdaGradOptimizer) SetLearningRate(lr float64) { a.lr = lr }

// Praxis returns AdaGrad.
func (a *AdaGradOptimizer) Praxis() Praxis { return AdaGrad }
