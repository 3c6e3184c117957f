// Package feedforward implements a fully connected multilayer network
// trained by backpropagation.
//
// Every non-input layer computes
//
//	layer[l+1] = f(W[l]·layer[l] + b[l])
//
// with W[l] of shape [sizes[l+1] x sizes[l]] and a single activation f shared
// by all layers. Training minimizes ½Σ(target-output)² (cross-entropy when f
// is softmax) with one optimizer update per batch.
//
// Forward returns a Trace holding every intermediate layer. Backward reads
// only the trace it is given, so concurrent callers with their own traces do
// not interfere. Train and the optimizer state are not safe for concurrent
// use.
package feedforward

import (
	"math/rand"
	"strconv"

	"github.com/born-ml/synapse/internal/data"
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/optim"
	"github.com/born-ml/synapse/internal/parallel"
	"github.com/born-ml/synapse/internal/tensor"
	"github.com/born-ml/synapse/internal/train"
)

// Sample is one labeled training record.
type Sample struct {
	Input  []float64 `json:"input" yaml:"input"`
	Output []float64 `json:"output" yaml:"output"`
}

// Network is a feedforward neural network.
type Network struct {
	opts    Options
	sizes   []int
	weights []*nn.Parameter
	biases  []*nn.Parameter
	params  []*nn.Parameter // w0, b0, w1, b1, ...
	opt     optim.Optimizer
	rng     *rand.Rand
	norm    *data.MinMax
	stats   train.Stats

	// Training state, valid during Train.
	samples []Sample
	workers []*worker
	ranges  []parallel.Range
}

// worker owns the per-goroutine buffers of a batch step.
type worker struct {
	trace  *Trace
	grads  nn.Gradients
	rng    *rand.Rand
	errSum float64
}

// New validates opts and returns a network. When both InputSize and
// OutputSize are set the parameters are initialized immediately; otherwise
// Train infers them from the data.
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

// Initialize allocates Xavier-initialized weights and biases for the
// configured topology and resets the optimizer state.
func (n *Network) Initialize() error {
	sizes := n.opts.topology()
	for i, s := range sizes {
		if s <= 0 {
			return errs.Configuration("sizes", "layer %d has size %d", i, s)
		}
	}

	weights := make([]*tensor.Dense, len(sizes)-1)
	biases := make([]*tensor.Dense, len(sizes)-1)
	for l := range weights {
		fanIn, fanOut := sizes[l], sizes[l+1]
		weights[l] = nn.Xavier(n.rng, fanIn, fanOut, tensor.Shape{fanOut, fanIn})
		biases[l] = nn.Xavier(n.rng, fanIn, fanOut, tensor.Shape{fanOut})
	}
	return n.setParameters(sizes, weights, biases)
}

// setParameters installs parameter tensors and a fresh optimizer.
func (n *Network) setParameters(sizes []int, weights, biases []*tensor.Dense) error {
	opt, err := optim.New(n.opts.optimizerConfig())
	if err != nil {
		return err
	}

	n.sizes = append([]int(nil), sizes...)
	n.opts.InputSize = sizes[0]
	n.opts.OutputSize = sizes[len(sizes)-1]
	n.opts.HiddenLayers = append([]int(nil), sizes[1:len(sizes)-1]...)

	n.weights = make([]*nn.Parameter, len(weights))
	n.biases = make([]*nn.Parameter, len(biases))
	n.params = n.params[:0]
	for l := range weights {
		n.weights[l] = nn.NewParameter(layerName("weights", l), weights[l])
		n.biases[l] = nn.NewParameter(layerName("biases", l), biases[l])
		n.params = append(n.params, n.weights[l], n.biases[l])
	}

	n.opt = opt
	n.opt.Initialize(n.params)
	return nil
}

// IsInitialized reports whether parameters have been allocated.
func (n *Network) IsInitialized() bool {
	return n.sizes != nil
}

// Sizes returns the layer sizes, input first.
func (n *Network) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// Options returns the effective options.
func (n *Network) Options() Options {
	return n.opts
}

// Parameters returns the trainable parameters as w0, b0, w1, b1, ...
func (n *Network) Parameters() []*nn.Parameter {
	return n.params
}

// Weights returns the weight matrix of layer l, shape [sizes[l+1] x sizes[l]].
func (n *Network) Weights(l int) *tensor.Dense {
	return n.weights[l].Tensor()
}

// Biases returns the bias vector of layer l, length sizes[l+1].
func (n *Network) Biases(l int) *tensor.Dense {
	return n.biases[l].Tensor()
}

// Optimizer returns the optimizer driving the parameter updates.
func (n *Network) Optimizer() optim.Optimizer {
	return n.opt
}

// Normalizer returns the fitted normalizer, or nil.
func (n *Network) Normalizer() *data.MinMax {
	return n.norm
}

// Stats returns the metrics of the most recent Train call.
func (n *Network) Stats() train.Stats {
	return n.stats
}

// Run predicts the output for input. Dropout is never applied and the
// network is not modified, so Run may be called concurrently with other Run
// calls.
func (n *Network) Run(input []float64) ([]float64, error) {
	if !n.IsInitialized() {
		return nil, errs.Uninitialized("run")
	}
	if len(input) != n.sizes[0] {
		return nil, errs.ShapeMismatch("input", []int{n.sizes[0]}, []int{len(input)})
	}
	if n.norm != nil {
		input = n.norm.NormalizeInput(input)
	}

	tr := n.newTrace()
	n.forward(tr, input, nil)
	out := append([]float64(nil), tr.Output()...)

	if n.norm != nil {
		out = n.norm.DenormalizeOutput(out)
	}
	return out, nil
}

func layerName(kind string, l int) string {
	return kind + "." + strconv.Itoa(l)
}
