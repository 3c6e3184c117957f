package lstm

import (
	"slices"

	"github.com/born-ml/synapse/internal/data"
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/serialization"
	"github.com/born-ml/synapse/internal/train"
)

// Snapshot is the serialized form of a Network.
type Snapshot struct {
	Type       string           `json:"type"`
	Options    Options          `json:"options"`
	Model      *Model           `json:"model"`
	TrainStats train.Stats      `json:"trainStats"`
	Vocabulary *data.Vocabulary `json:"vocabulary,omitempty"`
}

// Snapshot returns a deep copy of the network's state.
func (n *Network) Snapshot() (*Snapshot, error) {
	if !n.IsInitialized() {
		return nil, errs.Uninitialized("snapshot")
	}
	opts := n.opts
	opts.HiddenLayers = slices.Clone(opts.HiddenLayers)
	return &Snapshot{
		Type:       serialization.TypeLSTM,
		Options:    opts,
		Model:      n.model.Clone(),
		TrainStats: n.stats,
		Vocabulary: n.vocab,
	}, nil
}

// FromSnapshot rebuilds a network, checking every tensor against the
// topology in the options. The optimizer starts from fresh state.
func FromSnapshot(s *Snapshot) (*Network, error) {
	if s.Type != serialization.TypeLSTM {
		return nil, errs.Configuration("type", "expected %q, got %q", serialization.TypeLSTM, s.Type)
	}
	if s.Model == nil {
		return nil, errs.Configuration("model", "snapshot has no model")
	}

	opts := s.Options
	in, out := opts.InputSize, opts.OutputSize
	if in <= 0 || out <= 0 {
		return nil, errs.Configuration("sizes", "input and output sizes must be > 0, got %d and %d", in, out)
	}
	opts.InputSize, opts.OutputSize = 0, 0
	n, err := New(opts)
	if err != nil {
		return nil, err
	}
	n.opts.InputSize, n.opts.OutputSize = in, out

	if err := s.Model.Check(in, n.opts.HiddenLayers, out); err != nil {
		return nil, err
	}
	if err := n.setModel(s.Model.Clone()); err != nil {
		return nil, err
	}
	if s.Vocabulary != nil {
		if err := n.SetVocabulary(s.Vocabulary); err != nil {
			return nil, err
		}
	}
	n.stats = s.TrainStats
	return n, nil
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
