package nn

import "math/rand"

// MSE returns the mean squared error between output and target:
//
//	Loss = Σ (target - output)² / n
func MSE(output, target []float64) float64 {
	if len(output) == 0 {
		return 0
	}
	var sum float64
	for i, y := range output {
		d := target[i] - y
		sum += d * d
	}
	return sum / float64(len(output))
}

// DropoutMask fills mask for inverted dropout with rate p: each unit is zero
// with probability p and 1/(1-p) otherwise, so the expected activation is
// unchanged.
func DropoutMask(r *rand.Rand, mask []float64, p float64) {
	keep := 1 / (1 - p)
	for i := range mask {
		if r.Float64() < p {
			mask[i] = 0
		} else {
			mask[i] = keep
		}
	}
}
