package lstm

import (
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/optim"
)

// Defaults.
const (
	DefaultHiddenSize   = 20
	DefaultLearningRate = 0.01
	DefaultClipGradient = 5.0
)

// Options configures an LSTM network. Sizes of zero are inferred from the
// first training sequence.
type Options struct {
	InputSize      int           `json:"inputSize" yaml:"inputSize"`
	OutputSize     int           `json:"outputSize" yaml:"outputSize"`
	HiddenLayers   []int         `json:"hiddenLayers" yaml:"hiddenLayers"` // Default: [20]
	Activation     nn.Activation `json:"activation" yaml:"activation"`     // Output projection only
	LeakyReLUAlpha float64       `json:"leakyReluAlpha" yaml:"leakyReluAlpha"`
	LearningRate   float64       `json:"learningRate" yaml:"learningRate"`
	Momentum       float64       `json:"momentum" yaml:"momentum"`
	Praxis         optim.Praxis  `json:"praxis" yaml:"praxis"`
	Beta1          float64       `json:"beta1" yaml:"beta1"`
	Beta2          float64       `json:"beta2" yaml:"beta2"`
	Epsilon        float64       `json:"epsilon" yaml:"epsilon"`
	Decay          float64       `json:"decay" yaml:"decay"`
	ClipGradient   float64       `json:"clipGradient" yaml:"clipGradient"` // Per-element bound, default 5
	Seed           int64         `json:"seed" yaml:"seed"`
	Workers        int           `json:"workers" yaml:"workers"` // Goroutines per batch; -1 uses every CPU
}

// DefaultOptions returns a linear-output network trained with Adam.
func DefaultOptions() Options {
	return Options{
		HiddenLayers: []int{DefaultHiddenSize},
		Activation:   nn.Activation{Kind: nn.Linear},
		LearningRate: DefaultLearningRate,
		Praxis:       optim.Adam,
		ClipGradient: DefaultClipGradient,
	}
}

func (o Options) withDefaults() Options {
	if len(o.HiddenLayers) == 0 {
		o.HiddenLayers = []int{DefaultHiddenSize}
	}
	if o.LearningRate == 0 {
		o.LearningRate = DefaultLearningRate
	}
	if o.Praxis == "" {
		o.Praxis = optim.Adam
	}
	if o.ClipGradient == 0 {
		o.ClipGradient = DefaultClipGradient
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

// Validate rejects out-of-range hyperparameters.
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
	case o.ClipGradient <= 0:
		return errs.Configuration("clipGradient", "must be > 0, got %v", o.ClipGradient)
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
