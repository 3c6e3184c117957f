package nn

import (
	"math"
	"math/rand"
	"time"

	"github.com/born-ml/synapse/internal/tensor"
)

// NewRand returns a deterministic source for seed, or a time-seeded one when
// seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // Weight initialization is not security-critical
	return rand.New(rand.NewSource(seed))
}

// Gaussian draws from N(0, 1) using the Box–Muller transform.
func Gaussian(r *rand.Rand) float64 {
	// 1 - Float64() lies in (0, 1], keeping the log finite.
	u1 := 1 - r.Float64()
	u2 := r.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// XavierStd returns the Glorot standard deviation sqrt(2/(fanIn+fanOut)).
func XavierStd(fanIn, fanOut int) float64 {
	return math.Sqrt(2.0 / float64(fanIn+fanOut))
}

// Xavier (Glorot) initialization.
//
// Every entry is drawn from a zero-mean Gaussian with standard deviation
// sqrt(2/(fanIn+fanOut)).
func Xavier(r *rand.Rand, fanIn, fanOut int, shape tensor.Shape) *tensor.Dense {
	std := XavierStd(fanIn, fanOut)
	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = Gaussian(r) * std
	}
	return t
}

// Uniform fills a tensor with values drawn uniformly from [low, high).
func Uniform(r *rand.Rand, low, high float64, shape tensor.Shape) *tensor.Dense {
	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = low + r.Float64()*(high-low)
	}
	return t
}
