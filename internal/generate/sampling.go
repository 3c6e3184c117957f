// Package generate samples text from sequence models whose output is a
// probability distribution over a vocabulary.
package generate

import (
	"math"
	"math/rand"
	"sort"

	"github.com/born-ml/synapse/internal/errs"
)

// SamplingConfig configures the sampling strategy.
type SamplingConfig struct {
	// Temperature controls randomness. 0 = greedy, 1 = model distribution, >1 = flatter.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// TopK limits sampling to the K most likely tokens. 0 = disabled.
	TopK int `json:"topK" yaml:"topK"`

	// TopP (nucleus sampling) keeps the smallest set of tokens whose cumulative
	// probability exceeds P. 0 or 1.0 = disabled.
	TopP float64 `json:"topP" yaml:"topP"`

	// Seed for reproducibility. -1 = random.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultSamplingConfig returns sampling from the model distribution.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Temperature: 1.0,
		TopK:        0,
		TopP:        1.0,
		Seed:        -1,
	}
}

// Validate rejects out-of-range values.
func (c SamplingConfig) Validate() error {
	switch {
	case c.Temperature < 0:
		return errs.Configuration("temperature", "must be >= 0, got %v", c.Temperature)
	case c.TopK < 0:
		return errs.Configuration("topK", "must be >= 0, got %d", c.TopK)
	case c.TopP < 0 || c.TopP > 1:
		return errs.Configuration("topP", "must be in [0, 1], got %v", c.TopP)
	}
	return nil
}

// Sampler picks token indices from probability vectors.
type Sampler struct {
	config SamplingConfig
	rng    *rand.Rand
}

// NewSampler creates a sampler with the given configuration.
func NewSampler(config SamplingConfig) (*Sampler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if config.Seed >= 0 {
		rng = rand.New(rand.NewSource(config.Seed)) //nolint:gosec // Intentional deterministic seed for reproducibility
	} else {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // User requested random seed
	}

	return &Sampler{config: config, rng: rng}, nil
}

// Sample returns the index of the next token.
//
// probs need not be normalized; negative and NaN entries count as zero.
// The sampling process:
//  1. Apply temperature (p^(1/T), equivalent to dividing logits by T)
//  2. Apply Top-K filtering
//  3. Apply Top-P (nucleus) filtering
//  4. Sample from the renormalized distribution (or argmax if temperature=0)
func (s *Sampler) Sample(probs []float64) int {
	// Make a copy to avoid modifying the model output
	p := make([]float64, len(probs))
	for i, v := range probs {
		if v > 0 {
			p[i] = v
		}
	}

	if s.config.Temperature == 0 {
		return argmax(p)
	}

	if s.config.Temperature != 1.0 {
		inv := 1 / s.config.Temperature
		for i := range p {
			if p[i] > 0 {
				p[i] = math.Pow(p[i], inv)
			}
		}
	}

	if s.config.TopK > 0 && s.config.TopK < len(p) {
		s.topKFilter(p)
	}

	if s.config.TopP > 0 && s.config.TopP < 1.0 {
		s.topPFilter(p)
	}

	if !normalize(p) {
		// Degenerate distribution, e.g. every entry underflowed.
		return argmax(probs)
	}
	return s.multinomial(p)
}

// argmax returns the index of the maximum value.
func argmax(p []float64) int {
	maxIdx := 0
	for i, v := range p {
		if v > p[maxIdx] {
			maxIdx = i
		}
	}
	return maxIdx
}

// topKFilter zeroes everything below the k-th largest probability.
func (s *Sampler) topKFilter(p []float64) {
	sorted := append([]float64(nil), p...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	threshold := sorted[s.config.TopK-1]

	for i := range p {
		if p[i] < threshold {
			p[i] = 0
		}
	}
}

// topPFilter implements nucleus sampling.
func (s *Sampler) topPFilter(p []float64) {
	var total float64
	for _, v := range p {
		total += v
	}
	if total == 0 {
		return
	}

	order := make([]int, len(p))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return p[order[i]] > p[order[j]] })

	// Keep tokens until the cumulative probability exceeds TopP; always keep
	// at least one.
	var cum float64
	cutoff := len(order)
	for i, idx := range order {
		cum += p[idx] / total
		if cum > s.config.TopP {
			cutoff = i + 1
			break
		}
	}
	for _, idx := range order[cutoff:] {
		p[idx] = 0
	}
}

// multinomial samples from a normalized categorical distribution.
func (s *Sampler) multinomial(p []float64) int {
	r := s.rng.Float64()

	var cum float64
	last := 0
	for i, v := range p {
		if v == 0 {
			continue
		}
		cum += v
		last = i
		if r < cum {
			return i
		}
	}

	// Rounding left r above the final cumulative sum
	return last
}

// normalize scales p to sum to 1 and reports whether that was possible.
func normalize(p []float64) bool {
	var sum float64
	for _, v := range p {
		sum += v
	}
	if sum == 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return false
	}
	for i := range p {
		p[i] /= sum
	}
	return true
}
