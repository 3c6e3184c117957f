package optim

import (
	"math"

	"github.com/born-ml/synapse/internal/nn"
)

// AdamOptimizer implements Adam (Adaptive Moment Estimation).
//
// Update rule, with the bias correction folded into the step size:
//
//	t   = t + 1                                   // once per Update call
//	m   = beta1 * m + (1-beta1) * g               // First moment
//	v   = beta2 * v + (1-beta2) * g²              // Second moment
//	α_t = lr * sqrt(1-beta2^t) / (1-beta1^t)      // Bias correction
//	param = param - α_t * m / (sqrt(v) + eps)
//
// The timestep belongs to the optimizer instance. Callers that accumulate
// gradients over a batch must call Update once per batch, not per sample,
// or the bias correction drifts.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type AdamOptimizer struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int   // Timestep for bias correction
	m     state // First moment estimates
	v     state // Second moment estimates
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR      float64 // Learning rate
	Beta1   float64 // First moment decay (default: 0.9)
	Beta2   float64 // Second moment decay (default: 0.999)
	Epsilon float64 // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer, filling unset hyperparameters with
// their defaults.
func NewAdam(config AdamConfig) *AdamOptimizer {
	if config.Beta1 == 0 {
		config.Beta1 = DefaultBeta1
	}
	if config.Beta2 == 0 {
		config.Beta2 = DefaultBeta2
	}
	if config.Epsilon == 0 {
		config.Epsilon = DefaultEpsilon
	}
	return &AdamOptimizer{
		lr:    config.LR,
		beta1: config.Beta1,
		beta2: config.Beta2,
		eps:   config.Epsilon,
	}
}

// Initialize allocates zero moments and resets the timestep.
func (a *AdamOptimizer) Initialize(params []*nn.Parameter) {
	a.m = newState(params)
	a.v = newState(params)
	a.t = 0
}

// Update performs a single Adam step over every parameter.
func (a *AdamOptimizer) Update(params []*nn.Parameter, grads nn.Gradients) error {
	if err := checkUpdate("adam update", a.m, params, grads); err != nil {
		return err
	}

	a.t++
	alpha := a.lr * math.Sqrt(1-math.Pow(a.beta2, float64(a.t))) / (1 - math.Pow(a.beta1, float64(a.t)))

	for i, p := range params {
		paramData := p.Tensor().Data()
		mData := a.m[i].Data()
		vData := a.v[i].Data()
		for j, g := range grads[i].Data() {
			mData[j] = a.beta1*mData[j] + (1-a.beta1)*g
			vData[j] = a.beta2*vData[j] + (1-a.beta2)*g*g
			paramData[j] -= alpha * mData[j] / (math.Sqrt(vData[j]) + a.eps)
		}
	}
	return nil
}

// LearningRate returns the current learning rate.
func (a *AdamOptimizer) LearningRate() float64 {
	return a.lr
}

// SetLearningRate updates the learning rate.
func (a *AdamOptimizer) SetLearningRate(lr float64) {
	a.lr = lr
}

// Praxis returns Adam.
func (a *AdamOptimizer) Praxis() Praxis {
	return Adam
}

// Timestep returns the number of Update calls since Initialize.
func (a *AdamOptimizer) Timestep() int {
	return a.t
}
