package feedforward

import (
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/optim"
)

// Defaults.
const (
	DefaultLearningRate = 0.3
	DefaultMomentum     = 0.1
	MinHiddenSize       = 3
)

// Options configures a Network. Sizes of zero are inferred from the first
// training sample.
type Options struct {
	InputSize      int           `json:"inputSize" yaml:"inputSize"`
	OutputSize     int           `json:"outputSize" yaml:"outputSize"`
	HiddenLayers   []int         `json:"hiddenLayers" yaml:"hiddenLayers"` // Default: [max(3, inputSize/2)]
	Activation     nn.Activation `json:"activation" yaml:"activation"`     // Applied to every non-input layer
	LeakyReLUAlpha float64       `json:"leakyReluAlpha" yaml:"leakyReluAlpha"`
	LearningRate   float64       `json:"learningRate" yaml:"learningRate"`
	Momentum       float64       `json:"momentum" yaml:"momentum"`
	Dropout        float64       `json:"dropout" yaml:"dropout"` // Hidden layers only, [0, 1)
	Praxis         optim.Praxis  `json:"praxis" yaml:"praxis"`
	Beta1          float64       `json:"beta1" yaml:"beta1"`
	Beta2          float64       `json:"beta2" yaml:"beta2"`
	Epsilon        float64       `json:"epsilon" yaml:"epsilon"`
	Decay          float64       `json:"decay" yaml:"decay"`               // RMSprop cache decay
	ClipGradient   float64       `json:"clipGradient" yaml:"clipGradient"` // 0 disables
	Normalize      bool          `json:"normalize" yaml:"normalize"`       // Fit a min-max normalizer at Train
	Seed           int64         `json:"seed" yaml:"seed"`                 // 0 seeds from the clock
	Workers        int           `json:"workers" yaml:"workers"`           // Goroutines per batch; <= 1 is sequential, -1 uses every CPU
}

// DefaultOptions returns sigmoid SGD with momentum 0.1 and learning rate 0.3.
func DefaultOptions() Options {
	return Options{
		Activation:   nn.Activation{Kind: nn.Sigmoid},
		LearningRate: DefaultLearningRate,
		Momentum:     DefaultMomentum,
		Praxis:       optim.SGD,
	}
}

// withDefaults fills fields whose zero value is never valid.
func (o Options) withDefaults() Options {
	if o.LearningRate == 0 {
		o.LearningRate = DefaultLearningRate
	}
	if o.Praxis == "" {
		o.Praxis = optim.SGD
	}
	if o.Activation.Kind == nn.LeakyReLU {
		if o.LeakyReLUAlpha != 0 {
			o.Activation.Alpha = o.LeakyReLUAlpha
		} else if o.Activation.Alpha == 0 {
			o.Activation.Alpha = nn.DefaultLeakyReLUAlpha
		}
		o.LeakyReLUAlpha = o.Activation.Alpha
	}
	return o
}

// Validate rejects out-of-range hyperparameters. Topology sizes of zero are
// allowed; they are resolved when training starts.
func (o Options) Validate() error {
	if _, err := o.Activation.MarshalText(); err != nil {
		return err
	}
	switch {
	case o.InputSize < 0:
		return errs.Configuration("inputSize", "must be >= 0, got %d", o.InputSize)
	case o.OutputSize < 0:
		return errs.Configuration("outputSize", "must be >= 0, got %d", o.OutputSize)
	case o.LearningRate <= 0:
		return errs.Configuration("learningRate", "must be > 0, got %v", o.LearningRate)
	case o.Momentum < 0 || o.Momentum > 1:
		return errs.Configuration("momentum", "must be in [0, 1], got %v", o.Momentum)
	case o.Dropout < 0 || o.Dropout >= 1:
		return errs.Configuration("dropout", "must be in [0, 1), got %v", o.Dropout)
	case o.ClipGradient < 0:
		return errs.Configuration("clipGradient", "must be >= 0, got %v", o.ClipGradient)
	case o.Epsilon < 0:
		return errs.Configuration("epsilon", "must be > 0, got %v", o.Epsilon)
	case o.Workers < -1:
		return errs.Configuration("workers", "must be >= -1, got %d", o.Workers)
	}
	for i, h := range o.HiddenLayers {
		if h <= 0 {
			return errs.Configuration("hiddenLayers", "layer %d has size %d", i, h)
		}
	}
	if _, err := optim.ParsePraxis(string(o.Praxis)); err != nil {
		return err
	}
	return nil
}

// optimizerConfig maps the options onto an optimizer factory config.
func (o Options) optimizerConfig() optim.Config {
	return optim.Config{
		Praxis:   o.Praxis,
		LR:       o.LearningRate,
		Momentum: o.Momentum,
		Beta1:    o.Beta1,
		Beta2:    o.Beta2,
		Epsilon:  o.Epsilon,
		Decay:    o.Decay,
	}
}

// topology returns the layer sizes, applying the default hidden layout.
func (o Options) topology() []int {
	hidden := o.HiddenLayers
	if len(hidden) == 0 {
		hidden = []int{max(MinHiddenSize, o.InputSize/2)}
	}
	sizes := make([]int, 0, len(hidden)+2)
	sizes = append(sizes, o.InputSize)
	sizes = append(sizes, hidden...)
	return append(sizes, o.OutputSize)
}
