package lstm

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/tensor"
)

var sigmoid = nn.Activation{Kind: nn.Sigmoid}

// Trace records every gate value, cell state and hidden state of one
// forward pass, indexed [t][layer].
type Trace struct {
	Inputs  [][]float64
	Gates   [][][NumGates][]float64
	Cells   [][][]float64
	Hidden  [][][]float64
	Outputs [][]float64
}

// Forward runs a sequence through the network from zero initial state.
func (n *Network) Forward(inputs [][]float64) (*Trace, error) {
	if !n.IsInitialized() {
		return nil, errs.Uninitialized("forward")
	}
	if err := n.checkInputs(inputs); err != nil {
		return nil, err
	}
	return n.forward(inputs), nil
}

func (n *Network) forward(inputs [][]float64) *Trace {
	m := n.model
	T, L := len(inputs), len(m.Layers)
	tr := &Trace{
		Inputs:  inputs,
		Gates:   make([][][NumGates][]float64, T),
		Cells:   make([][][]float64, T),
		Hidden:  make([][][]float64, T),
		Outputs: make([][]float64, T),
	}

	for t, x := range inputs {
		tr.Gates[t] = make([][NumGates][]float64, L)
		tr.Cells[t] = make([][]float64, L)
		tr.Hidden[t] = make([][]float64, L)

		for l := range m.Layers {
			layer := &m.Layers[l]
			H := layer.Size()
			var prevH, prevC []float64
			if t > 0 {
				prevH, prevC = tr.Hidden[t-1][l], tr.Cells[t-1][l]
			}

			var gates [NumGates][]float64
			for g := range NumGates {
				p := layer.Gates[g]
				v := make([]float64, H)
				tensor.MulVec(v, p.Wx, x)
				if prevH != nil {
					tensor.MulVecAdd(v, p.Wh, prevH)
				}
				floats.Add(v, p.B.Data())
				if g == CellWrite {
					for j := range v {
						v[j] = math.Tanh(v[j])
					}
				} else {
					sigmoid.Forward(v, v)
				}
				gates[g] = v
			}

			c := make([]float64, H)
			h := make([]float64, H)
			for j := range c {
				c[j] = gates[InputGate][j] * gates[CellWrite][j]
				if prevC != nil {
					c[j] += gates[ForgetGate][j] * prevC[j]
				}
				h[j] = gates[OutputGate][j] * math.Tanh(c[j])
			}

			tr.Gates[t][l] = gates
			tr.Cells[t][l] = c
			tr.Hidden[t][l] = h
			x = h
		}

		y := make([]float64, m.By.Len())
		tensor.MulVec(y, m.Why, x)
		floats.Add(y, m.By.Data())
		n.opts.Activation.Forward(y, y)
		tr.Outputs[t] = y
	}
	return tr
}

// Backward accumulates the gradients of the sequence recorded in tr into
// grads, aligned with Parameters(), and returns the sequence error: the
// mean over targeted steps of the per-step mean squared error. targets must
// have one entry per step; nil entries are skipped. Gradients are not
// clipped here.
func (n *Network) Backward(tr *Trace, targets [][]float64, grads nn.Gradients) (float64, error) {
	if !n.IsInitialized() {
		return 0, errs.Uninitialized("backward")
	}
	if len(targets) != len(tr.Outputs) {
		return 0, errs.ShapeMismatch("targets", []int{len(tr.Outputs)}, []int{len(targets)})
	}
	for _, y := range targets {
		if y != nil && len(y) != n.opts.OutputSize {
			return 0, errs.ShapeMismatch("target", []int{n.opts.OutputSize}, []int{len(y)})
		}
	}
	if err := grads.CheckShapes(n.params); err != nil {
		return 0, err
	}
	return n.backward(tr, targets, grads), nil
}

// backward is backpropagation through time. The stored gradients are
// dLoss/dθ for ½Σ(output-target)² per step, or cross-entropy when the
// output activation is softmax.
func (n *Network) backward(tr *Trace, targets [][]float64, grads nn.Gradients) float64 {
	m := n.model
	L := len(m.Layers)
	act := n.opts.Activation
	gWhy, gBy := grads[len(grads)-2], grads[len(grads)-1]

	// Gradients flowing from step t+1 back into step t.
	dhNext := make([][]float64, L)
	dcNext := make([][]float64, L)
	for l := range m.Layers {
		dhNext[l] = make([]float64, m.Layers[l].Size())
		dcNext[l] = make([]float64, m.Layers[l].Size())
	}

	top := m.Layers[L-1].Size()
	dy := make([]float64, m.By.Len())
	dhTop := make([]float64, top)

	for t := len(tr.Outputs) - 1; t >= 0; t-- {
		clear(dhTop)
		if target := targets[t]; target != nil {
			y := tr.Outputs[t]
			outputGradient(act, dy, y, target)
			tensor.AddOuter(gWhy, 1, dy, tr.Hidden[t][L-1])
			floats.Add(gBy.Data(), dy)
			tensor.MulVecT(dhTop, m.Why, dy)
		}

		// Gradient w.r.t. the current layer's output, from the layer above.
		dFromAbove := dhTop
		for l := L - 1; l >= 0; l-- {
			layer := &m.Layers[l]
			H := layer.Size()
			gates := tr.Gates[t][l]
			c := tr.Cells[t][l]

			var x []float64
			if l == 0 {
				x = tr.Inputs[t]
			} else {
				x = tr.Hidden[t][l-1]
			}
			var prevH, prevC []float64
			if t > 0 {
				prevH, prevC = tr.Hidden[t-1][l], tr.Cells[t-1][l]
			}

			dh := make([]float64, H)
			floats.AddTo(dh, dhNext[l], dFromAbove)

			var dGate [NumGates][]float64
			for g := range NumGates {
				dGate[g] = make([]float64, H)
			}
			in, forget, out, write := gates[InputGate], gates[ForgetGate], gates[OutputGate], gates[CellWrite]
			for j := range H {
				tanhC := math.Tanh(c[j])
				dGate[OutputGate][j] = dh[j] * tanhC * out[j] * (1 - out[j])

				dc := dcNext[l][j] + dh[j]*out[j]*(1-tanhC*tanhC)
				dGate[InputGate][j] = dc * write[j] * in[j] * (1 - in[j])
				if prevC != nil {
					dGate[ForgetGate][j] = dc * prevC[j] * forget[j] * (1 - forget[j])
				}
				dGate[CellWrite][j] = dc * in[j] * (1 - write[j]*write[j])
				dcNext[l][j] = dc * forget[j]
			}

			clear(dhNext[l])
			var dx []float64
			if l > 0 {
				dx = make([]float64, len(x))
			}
			for g := range NumGates {
				p := layer.Gates[g]
				k := gradIndex(l, g)
				tensor.AddOuter(grads[k], 1, dGate[g], x)
				if prevH != nil {
					tensor.AddOuter(grads[k+1], 1, dGate[g], prevH)
					tensor.MulVecT(dhNext[l], p.Wh, dGate[g])
				}
				floats.Add(grads[k+2].Data(), dGate[g])
				if dx != nil {
					tensor.MulVecT(dx, p.Wx, dGate[g])
				}
			}
			dFromAbove = dx
		}
	}

	return sequenceError(tr.Outputs, targets)
}

// sequenceError is the mean over targeted steps of the per-step mean squared
// error.
func sequenceError(outputs, targets [][]float64) float64 {
	var sum float64
	var targeted int
	for t, target := range targets {
		if target == nil {
			continue
		}
		sum += nn.MSE(outputs[t], target)
		targeted++
	}
	if targeted == 0 {
		return 0
	}
	return sum / float64(targeted)
}

// outputGradient writes dLoss/d(pre-activation) of the output projection:
// output - target for softmax, (output - target)·act'(output) otherwise.
func outputGradient(act nn.Activation, dst, output, target []float64) {
	act.OutputDelta(dst, output, target)
	floats.Scale(-1, dst)
}
