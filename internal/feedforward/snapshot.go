package feedforward

import (
	"slices"

	"github.com/born-ml/synapse/internal/data"
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/serialization"
	"github.com/born-ml/synapse/internal/tensor"
	"github.com/born-ml/synapse/internal/train"
)

// Snapshot is the serialized form of a Network.
type Snapshot struct {
	Type       string          `json:"type"`
	Options    Options         `json:"options"`
	Sizes      []int           `json:"sizes"`
	Weights    []*tensor.Dense `json:"weights"`
	Biases     []*tensor.Dense `json:"biases"`
	TrainStats train.Stats     `json:"trainStats"`
	Normalizer *data.MinMax    `json:"normalizer,omitempty"`
}

// Snapshot returns a deep copy of the network's state.
func (n *Network) Snapshot() (*Snapshot, error) {
	if !n.IsInitialized() {
		return nil, errs.Uninitialized("snapshot")
	}
	opts := n.opts
	opts.HiddenLayers = slices.Clone(opts.HiddenLayers)
	s := &Snapshot{
		Type:       serialization.TypeNeuralNetwork,
		Options:    opts,
		Sizes:      n.Sizes(),
		Weights:    make([]*tensor.Dense, len(n.weights)),
		Biases:     make([]*tensor.Dense, len(n.biases)),
		TrainStats: n.stats,
		Normalizer: n.norm,
	}
	for l := range n.weights {
		s.Weights[l] = n.weights[l].Tensor().Clone()
		s.Biases[l] = n.biases[l].Tensor().Clone()
	}
	return s, nil
}

// FromSnapshot rebuilds a network. Every tensor is checked against the
// declared sizes; the optimizer starts from fresh state.
func FromSnapshot(s *Snapshot) (*Network, error) {
	if s.Type != serialization.TypeNeuralNetwork {
		return nil, errs.Configuration("type", "expected %q, got %q", serialization.TypeNeuralNetwork, s.Type)
	}
	if len(s.Sizes) < 2 {
		return nil, errs.Configuration("sizes", "need at least 2 layers, got %d", len(s.Sizes))
	}
	for i, size := range s.Sizes {
		if size <= 0 {
			return nil, errs.Configuration("sizes", "layer %d has size %d", i, size)
		}
	}

	layers := len(s.Sizes) - 1
	if len(s.Weights) != layers || len(s.Biases) != layers {
		return nil, errs.ShapeMismatch("layers", []int{layers, layers}, []int{len(s.Weights), len(s.Biases)})
	}

	weights := make([]*tensor.Dense, layers)
	biases := make([]*tensor.Dense, layers)
	for l := range layers {
		wantW := tensor.Shape{s.Sizes[l+1], s.Sizes[l]}
		wantB := tensor.Shape{s.Sizes[l+1]}
		if s.Weights[l] == nil || !s.Weights[l].Shape().Equal(wantW) {
			return nil, errs.ShapeMismatch(layerName("weights", l), wantW, shapeOf(s.Weights[l]))
		}
		if s.Biases[l] == nil || !s.Biases[l].Shape().Equal(wantB) {
			return nil, errs.ShapeMismatch(layerName("biases", l), wantB, shapeOf(s.Biases[l]))
		}
		weights[l] = s.Weights[l].Clone()
		biases[l] = s.Biases[l].Clone()
	}

	if s.Normalizer != nil {
		if err := s.Normalizer.Check(s.Sizes[0], s.Sizes[layers]); err != nil {
			return nil, err
		}
	}

	opts := s.Options
	opts.InputSize, opts.OutputSize = 0, 0
	n, err := New(opts)
	if err != nil {
		return nil, err
	}
	if err := n.setParameters(s.Sizes, weights, biases); err != nil {
		return nil, err
	}
	n.stats = s.TrainStats
	n.norm = s.Normalizer
	return n, nil
}

func shapeOf(d *tensor.Dense) []int {
	if d == nil {
		return nil
	}
	return d.Shape()
}

// Save writes the network to a snapshot file.
func (n *Network) Save(path string) error {
	s, err := n.Snapshot()
	if err != nil {
		return err
	}
	return serialization.WriteFile(path, s)
}

// Load reads a network from a snapshot file.
func Load(path string) (*Network, error) {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := f.Decode(&s); err != nil {
		return nil, errs.IO("read", path, err)
	}
	return FromSnapshot(&s)
}
