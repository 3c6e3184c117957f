// Package lstm implements a stacked LSTM network with a dense output
// projection, trained by backpropagation through time.
//
// At timestep t each layer computes
//
//	i = σ(Wx_i·x + Wh_i·h + b_i)    f = σ(Wx_f·x + Wh_f·h + b_f)
//	o = σ(Wx_o·x + Wh_o·h + b_o)    g = tanh(Wx_g·x + Wh_g·h + b_g)
//	c_t = f⊙c_{t-1} + i⊙g
//	h_t = o⊙tanh(c_t)
//
// where x is the sequence input for the first layer and the hidden state of
// the layer below otherwise. The output at t is act(Why·h_top + By).
//
// Every gradient entry is clipped to [-ClipGradient, ClipGradient] before
// each optimizer update.
package lstm

import (
	"math/rand"

	"github.com/born-ml/synapse/internal/data"
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/optim"
	"github.com/born-ml/synapse/internal/parallel"
	"github.com/born-ml/synapse/internal/train"
)

// Sequence is one training sequence. Targets[t] is the expected output
// after Inputs[t]; a nil target contributes no loss.
type Sequence struct {
	Inputs  [][]float64 `json:"input" yaml:"input"`
	Targets [][]float64 `json:"output" yaml:"output"`
}

// NextStepSequence frames a time series for next-step prediction.
func NextStepSequence(series [][]float64) (Sequence, error) {
	inputs, targets, err := data.NextStep(series)
	if err != nil {
		return Sequence{}, err
	}
	return Sequence{Inputs: inputs, Targets: targets}, nil
}

// Network is an LSTM network.
type Network struct {
	opts   Options
	model  *Model
	params []*nn.Parameter
	opt    optim.Optimizer
	rng    *rand.Rand
	vocab  *data.Vocabulary
	stats  train.Stats

	// Training state, valid during Train.
	sequences []Sequence
	workers   []*worker
	ranges    []parallel.Range
}

type worker struct {
	grads  nn.Gradients
	errSum float64
}

// New validates opts and returns a network, initialized when both
// InputSize and OutputSize are set.
func New(opts Options) (*Network, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := &Network{opts: opts, rng: nn.NewRand(opts.Seed)}
	if opts.InputSize > 0 && opts.OutputSize > 0 {
		if err := n.Initialize(); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Initialize allocates a freshly initialized model and optimizer state.
func (n *Network) Initialize() error {
	if n.opts.InputSize <= 0 || n.opts.OutputSize <= 0 {
		return errs.Configuration("sizes", "input and output sizes must be > 0, got %d and %d", n.opts.InputSize, n.opts.OutputSize)
	}
	return n.setModel(NewModel(n.rng, n.opts.InputSize, n.opts.HiddenLayers, n.opts.OutputSize))
}

func (n *Network) setModel(m *Model) error {
	opt, err := optim.New(n.opts.optimizerConfig())
	if err != nil {
		return err
	}
	n.model = m
	n.params = m.Parameters()
	n.opt = opt
	n.opt.Initialize(n.params)
	return nil
}

// IsInitialized reports whether a model has been allocated.
func (n *Network) IsInitialized() bool {
	return n.model != nil
}

// Model returns the live parameters.
func (n *Network) Model() *Model {
	return n.model
}

// Options returns the effective options.
func (n *Network) Options() Options {
	return n.opts
}

// Parameters returns the trainable parameters in Model.Parameters order.
func (n *Network) Parameters() []*nn.Parameter {
	return n.params
}

// Optimizer returns the optimizer driving the parameter updates.
func (n *Network) Optimizer() optim.Optimizer {
	return n.opt
}

// Stats returns the metrics of the most recent Train call.
func (n *Network) Stats() train.Stats {
	return n.stats
}

// Vocabulary returns the vocabulary of a text model, or nil.
func (n *Network) Vocabulary() *data.Vocabulary {
	return n.vocab
}

// SetVocabulary attaches the vocabulary used to encode text. Its size must
// match both the input and output sizes once they are known.
func (n *Network) SetVocabulary(v *data.Vocabulary) error {
	size := v.Size()
	if n.opts.InputSize == 0 && n.opts.OutputSize == 0 && !n.IsInitialized() {
		n.opts.InputSize, n.opts.OutputSize = size, size
	}
	if n.opts.InputSize != size || n.opts.OutputSize != size {
		return errs.ShapeMismatch("vocabulary", []int{n.opts.InputSize, n.opts.OutputSize}, []int{size, size})
	}
	n.vocab = v
	return nil
}

// Run feeds inputs through the network and returns the output after the
// last step.
func (n *Network) Run(inputs [][]float64) ([]float64, error) {
	tr, err := n.Forward(inputs)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), tr.Outputs[len(tr.Outputs)-1]...), nil
}

// Generate rolls the network forward autoregressively: starting from seed,
// each step's output is appended as the next input. A positive window keeps
// only the most recent window inputs. It returns the length generated
// outputs.
func (n *Network) Generate(seed [][]float64, length, window int) ([][]float64, error) {
	if !n.IsInitialized() {
		return nil, errs.Uninitialized("generate")
	}
	if n.opts.InputSize != n.opts.OutputSize {
		return nil, errs.Configuration("outputSize", "generation feeds outputs back as inputs; sizes %d and %d differ", n.opts.InputSize, n.opts.OutputSize)
	}
	if length < 0 || window < 0 {
		return nil, errs.Configuration("length", "length and window must be >= 0, got %d and %d", length, window)
	}

	seq := make([][]float64, len(seed), len(seed)+length)
	copy(seq, seed)
	out := make([][]float64, 0, length)
	for range length {
		if window > 0 && len(seq) > window {
			seq = seq[len(seq)-window:]
		}
		next, err := n.Run(seq)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		seq = append(seq, next)
	}
	return out, nil
}

func (n *Network) checkInputs(inputs [][]float64) error {
	if len(inputs) == 0 {
		return errs.Configuration("input", "sequence is empty")
	}
	for _, x := range inputs {
		if len(x) != n.opts.InputSize {
			return errs.ShapeMismatch("input", []int{n.opts.InputSize}, []int{len(x)})
		}
	}
	return nil
}
