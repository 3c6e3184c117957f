// Package nn holds the building blocks shared by the feedforward and LSTM
// engines: trainable parameters and their gradients, activation functions,
// initializers, dropout masks and the loss function.
package nn

import (
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/tensor"
)

// Parameter is a named trainable tensor.
//
// Example:
//
//	w := nn.NewParameter("weights.0", tensor.NewMatrix(3, 2))
//	w.Tensor().Set(0, 1, 0.5)
type Parameter struct {
	name   string
	tensor *tensor.Dense
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Dense) *Parameter {
	return &Parameter{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Dense {
	return p.tensor
}

// Shape returns the parameter shape.
func (p *Parameter) Shape() tensor.Shape {
	return p.tensor.Shape()
}

// Gradients holds one gradient tensor per parameter, index-aligned with the
// parameter list it was created from.
type Gradients []*tensor.Dense

// ZerosLike allocates zero gradients shaped like params.
func ZerosLike(params []*Parameter) Gradients {
	grads := make(Gradients, len(params))
	for i, p := range params {
		grads[i] = tensor.Zeros(p.Shape())
	}
	return grads
}

// Zero resets every gradient to 0.
func (g Gradients) Zero() {
	for _, t := range g {
		t.Zero()
	}
}

// Add accumulates other into g.
func (g Gradients) Add(other Gradients) error {
	if len(g) != len(other) {
		return errs.ShapeMismatch("gradients", []int{len(g)}, []int{len(other)})
	}
	for i := range g {
		if err := g[i].Add(other[i]); err != nil {
			return err
		}
	}
	return nil
}

// Scale multiplies every gradient by c.
func (g Gradients) Scale(c float64) {
	for _, t := range g {
		t.Scale(c)
	}
}

// Clip clamps every gradient entry to [-limit, limit], independently per
// element. A non-positive limit disables clipping.
func (g Gradients) Clip(limit float64) {
	if limit <= 0 {
		return
	}
	for _, t := range g {
		t.Clip(limit)
	}
}

// CheckShapes verifies that g matches params one-to-one.
func (g Gradients) CheckShapes(params []*Parameter) error {
	if len(g) != len(params) {
		return errs.ShapeMismatch("gradients", []int{len(params)}, []int{len(g)})
	}
	for i, p := range params {
		if !p.Shape().Equal(g[i].Shape()) {
			return errs.ShapeMismatch(p.Name(), p.Shape(), g[i].Shape())
		}
	}
	return nil
}

// CloneParameters returns a structural deep copy of the parameter values.
func CloneParameters(params []*Parameter) []*tensor.Dense {
	snapshot := make([]*tensor.Dense, len(params))
	for i, p := range params {
		snapshot[i] = p.Tensor().Clone()
	}
	return snapshot
}

// RestoreParameters copies a snapshot taken by CloneParameters back into
// params.
func RestoreParameters(params []*Parameter, snapshot []*tensor.Dense) error {
	if len(params) != len(snapshot) {
		return errs.ShapeMismatch("parameters", []int{len(params)}, []int{len(snapshot)})
	}
	for i, p := range params {
		if err := p.Tensor().CopyFrom(snapshot[i]); err != nil {
			return errs.ShapeMismatch(p.Name(), p.Shape(), snapshot[i].Shape())
		}
	}
	return nil
}
