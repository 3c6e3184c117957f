package feedforward

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/tensor"
)

// Trace records one forward pass for the paired Backward call.
type Trace struct {
	// Layers[0] is the input as passed to Forward; Layers[l] for l > 0 are
	// the activations, with the dropout mask applied on hidden layers.
	Layers [][]float64

	raw    [][]float64 // Pre-mask activations of dropped-out layers
	masks  [][]float64 // Dropout masks; nil entries where dropout was off
	deltas [][]float64 // Backward scratch
}

// Output returns the output layer's activations.
func (t *Trace) Output() []float64 {
	return t.Layers[len(t.Layers)-1]
}

// Mask returns the dropout mask applied to layer l, or nil.
func (t *Trace) Mask(l int) []float64 {
	return t.masks[l]
}

// Raw returns the activations of layer l before its dropout mask.
func (t *Trace) Raw(l int) []float64 {
	if t.masks[l] != nil {
		return t.raw[l]
	}
	return t.Layers[l]
}

func (n *Network) newTrace() *Trace {
	L := len(n.sizes)
	t := &Trace{
		Layers: make([][]float64, L),
		raw:    make([][]float64, L),
		masks:  make([][]float64, L),
		deltas: make([][]float64, L),
	}
	for l := 1; l < L; l++ {
		t.Layers[l] = make([]float64, n.sizes[l])
		t.deltas[l] = make([]float64, n.sizes[l])
	}
	return t
}

// Forward runs input through the network and returns the trace. With
// training set and a nonzero dropout rate, hidden units are dropped using
// the network's random source.
func (n *Network) Forward(input []float64, training bool) (*Trace, error) {
	if !n.IsInitialized() {
		return nil, errs.Uninitialized("forward")
	}
	if len(input) != n.sizes[0] {
		return nil, errs.ShapeMismatch("input", []int{n.sizes[0]}, []int{len(input)})
	}
	tr := n.newTrace()
	var r *rand.Rand
	if training {
		r = n.rng
	}
	n.forward(tr, input, r)
	return tr, nil
}

// forward fills tr. A nil r disables dropout.
func (n *Network) forward(tr *Trace, input []float64, r *rand.Rand) {
	act := n.opts.Activation
	last := len(n.sizes) - 1
	dropout := r != nil && n.opts.Dropout > 0

	tr.Layers[0] = input
	for l := range n.weights {
		out := tr.Layers[l+1]
		tensor.MulVec(out, n.weights[l].Tensor(), tr.Layers[l])
		floats.Add(out, n.biases[l].Tensor().Data())
		act.Forward(out, out)

		if !dropout || l+1 == last {
			tr.masks[l+1] = nil
			continue
		}
		if tr.masks[l+1] == nil {
			tr.masks[l+1] = make([]float64, len(out))
			tr.raw[l+1] = make([]float64, len(out))
		}
		copy(tr.raw[l+1], out)
		nn.DropoutMask(r, tr.masks[l+1], n.opts.Dropout)
		floats.Mul(out, tr.masks[l+1])
	}
}

// Backward accumulates the gradients of the sample recorded in tr into
// grads, which must be shaped like Parameters(), and returns the sample's
// mean squared error.
func (n *Network) Backward(tr *Trace, target []float64, grads nn.Gradients) (float64, error) {
	if !n.IsInitialized() {
		return 0, errs.Uninitialized("backward")
	}
	if len(tr.Layers) != len(n.sizes) {
		return 0, errs.ShapeMismatch("trace", []int{len(n.sizes)}, []int{len(tr.Layers)})
	}
	if out := n.sizes[len(n.sizes)-1]; len(target) != out {
		return 0, errs.ShapeMismatch("target", []int{out}, []int{len(target)})
	}
	if err := grads.CheckShapes(n.params); err != nil {
		return 0, err
	}
	return n.backward(tr, target, grads), nil
}

// backward propagates the output error down the layers.
//
// The stored gradients are dLoss/dθ, the negation of the error signals δ:
//
//	δ_out    = (target - output) · f'(output)
//	δ[l]     = (W[l]ᵀ·δ[l+1] ⊙ mask[l]) · f'(raw[l])
//	dW[l]   -= δ[l+1] ⊗ layer[l]
//	db[l]   -= δ[l+1]
func (n *Network) backward(tr *Trace, target []float64, grads nn.Gradients) float64 {
	act := n.opts.Activation
	output := tr.Output()

	L := len(n.sizes) - 1
	delta := tr.deltas[L]
	act.OutputDelta(delta, output, target)

	for l := L - 1; l >= 0; l-- {
		tensor.AddOuter(grads[2*l], -1, delta, tr.Layers[l])
		floats.Sub(grads[2*l+1].Data(), delta)
		if l == 0 {
			break
		}

		prev := tr.deltas[l]
		clear(prev)
		tensor.MulVecT(prev, n.weights[l].Tensor(), delta)
		if mask := tr.masks[l]; mask != nil {
			floats.Mul(prev, mask)
		}
		raw := tr.Raw(l)
		for i := range prev {
			prev[i] *= act.Derivative(raw[i])
		}
		delta = prev
	}

	return nn.MSE(output, target)
}
