package data

import "github.com/born-ml/synapse/internal/errs"

// NextStep frames a time series for next-step prediction: the input at
// step t is series[t] and the target is series[t+1].
func NextStep(series [][]float64) (inputs, targets [][]float64, err error) {
	if len(series) < 2 {
		return nil, nil, errs.Configuration("data", "series needs at least 2 steps, got %d", len(series))
	}
	width := len(series[0])
	for _, row := range series {
		if len(row) != width {
			return nil, nil, errs.ShapeMismatch("series", []int{width}, []int{len(row)})
		}
	}
	return series[:len(series)-1], series[1:], nil
}

// Windows cuts a series into overlapping next-step sequences of length
// size, advancing by stride.
func Windows(series [][]float64, size, stride int) (inputs, targets [][][]float64, err error) {
	if size < 1 || stride < 1 {
		return nil, nil, errs.Configuration("window", "size and stride must be > 0, got %d and %d", size, stride)
	}
	for start := 0; start+size < len(series); start += stride {
		in, tg, err := NextStep(series[start : start+size+1])
		if err != nil {
			return nil, nil, err
		}
		inputs = append(inputs, in)
		targets = append(targets, tg)
	}
	if len(inputs) == 0 {
		return nil, nil, errs.Configuration("window", "series of %d steps is shorter than window %d", len(series), size+1)
	}
	return inputs, targets, nil
}
