package optim

import (
	"github.com/born-ml/synapse/internal/nn"
)

// SGDOptimizer implements Stochastic Gradient Descent with momentum.
//
// Update rule (element-wise):
//
//	velocity = momentum * velocity - lr * gradient
//	param    = param + velocity
//
// With momentum 0 this is plain gradient descent.
type SGDOptimizer struct {
	lr         float64
	momentum   float64
	velocities state
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate
	Momentum float64 // Momentum factor, [0, 1]
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGDOptimizer {
	return &SGDOptimizer{lr: config.LR, momentum: config.Momentum}
}

// Initialize allocates zero velocities shaped like params.
func (s *SGDOptimizer) Initialize(params []*nn.Parameter) {
	s.velocities = newState(params)
}

// Update applies one momentum step to every parameter.
func (s *SGDOptimizer) Update(params []*nn.Parameter, grads nn.Gradients) error {
	if err := checkUpdate("sgd update", s.velocities, params, grads); err != nil {
		return err
	}
	for i, p := range params {
		paramData := p.Tensor().Data()
		velocity := s.velocities[i].Data()
		for j, g := range grads[i].Data() {
			velocity[j] = s.momentum*velocity[j] - s.lr*g
			paramData[j] += velocity[j]
		}
	}
	return nil
}

// LearningRate returns the current learning rate.
func (s *SGDOptimizer) LearningRate() float64 {
	return s.lr
}

// SetLearningRate updates the learning rate.
func (s *SGDOptimizer) SetLearningRate(lr float64) {
	s.lr = lr
}

// Praxis returns SGD.
func (s *SGDOptimizer) Praxis() Praxis {
	return SGD
}
