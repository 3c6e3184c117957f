// Package data holds the collaborators that turn raw records into network
// inputs: a min-max normalizer for numeric samples, a token vocabulary for
// text, and next-step framing for time series.
package data

import "github.com/born-ml/synapse/internal/errs"

// MinMax maps every input and output column onto [0, 1] using the range seen
// at fit time. A constant column maps to 0.
type MinMax struct {
	InputMin  []float64 `json:"inputMin"`
	InputMax  []float64 `json:"inputMax"`
	OutputMin []float64 `json:"outputMin"`
	OutputMax []float64 `json:"outputMax"`
}

// FitMinMax records the per-column range of inputs and outputs. Rows must
// be non-empty and of equal width.
func FitMinMax(inputs, outputs [][]float64) (*MinMax, error) {
	if len(inputs) == 0 || len(inputs) != len(outputs) {
		return nil, errs.Configuration("data", "need matching non-empty inputs and outputs, got %d and %d", len(inputs), len(outputs))
	}
	inMin, inMax, err := columnRange("input", inputs)
	if err != nil {
		return nil, err
	}
	outMin, outMax, err := columnRange("output", outputs)
	if err != nil {
		return nil, err
	}
	return &MinMax{InputMin: inMin, InputMax: inMax, OutputMin: outMin, OutputMax: outMax}, nil
}

func columnRange(name string, rows [][]float64) (lo, hi []float64, err error) {
	width := len(rows[0])
	lo = append([]float64(nil), rows[0]...)
	hi = append([]float64(nil), rows[0]...)
	for _, row := range rows[1:] {
		if len(row) != width {
			return nil, nil, errs.ShapeMismatch(name, []int{width}, []int{len(row)})
		}
		for i, v := range row {
			lo[i] = min(lo[i], v)
			hi[i] = max(hi[i], v)
		}
	}
	return lo, hi, nil
}

// NormalizeInput returns x scaled into [0, 1].
func (m *MinMax) NormalizeInput(x []float64) []float64 {
	return scale(x, m.InputMin, m.InputMax)
}

// NormalizeOutput returns y scaled into [0, 1].
func (m *MinMax) NormalizeOutput(y []float64) []float64 {
	return scale(y, m.OutputMin, m.OutputMax)
}

// DenormalizeOutput maps a network output back to the original range.
func (m *MinMax) DenormalizeOutput(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = m.OutputMin[i] + v*(m.OutputMax[i]-m.OutputMin[i])
	}
	return out
}

// Check reports whether the normalizer fits the given widths.
func (m *MinMax) Check(inputSize, outputSize int) error {
	if len(m.InputMin) != inputSize || len(m.InputMax) != inputSize {
		return errs.ShapeMismatch("normalizer input", []int{inputSize}, []int{len(m.InputMin)})
	}
	if len(m.OutputMin) != outputSize || len(m.OutputMax) != outputSize {
		return errs.ShapeMismatch("normalizer output", []int{outputSize}, []int{len(m.OutputMin)})
	}
	return nil
}

func scale(x, lo, hi []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if span := hi[i] - lo[i]; span != 0 {
			out[i] = (v - lo[i]) / span
		}
	}
	return out
}
