package lstm

import (
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/parallel"
	"github.com/born-ml/synapse/internal/train"
)

// Train fits the network to sequences. The reported error is the mean over
// sequences of each sequence's mean per-step error, measured after each
// epoch's updates.
func (n *Network) Train(sequences []Sequence, opts train.Options) (train.Stats, error) {
	if err := n.prepare(sequences); err != nil {
		return train.Stats{}, err
	}
	defer n.release()

	stats, err := train.Run(n, len(n.sequences), n.rng, opts)
	n.stats = stats
	return stats, err
}

func (n *Network) prepare(sequences []Sequence) error {
	if len(sequences) == 0 {
		return errs.Configuration("data", "training set is empty")
	}
	if !n.IsInitialized() {
		if n.opts.InputSize == 0 && len(sequences[0].Inputs) > 0 {
			n.opts.InputSize = len(sequences[0].Inputs[0])
		}
		if n.opts.OutputSize == 0 {
			n.opts.OutputSize = firstTargetWidth(sequences)
		}
		if err := n.Initialize(); err != nil {
			return err
		}
	}

	for _, s := range sequences {
		if err := n.checkInputs(s.Inputs); err != nil {
			return err
		}
		if len(s.Targets) != len(s.Inputs) {
			return errs.ShapeMismatch("targets", []int{len(s.Inputs)}, []int{len(s.Targets)})
		}
		for _, y := range s.Targets {
			if y != nil && len(y) != n.opts.OutputSize {
				return errs.ShapeMismatch("target", []int{n.opts.OutputSize}, []int{len(y)})
			}
		}
	}

	n.sequences = sequences
	n.workers = make([]*worker, parallel.WorkerCount(n.opts.Workers))
	for i := range n.workers {
		n.workers[i] = &worker{grads: nn.ZerosLike(n.params)}
	}
	return nil
}

func firstTargetWidth(sequences []Sequence) int {
	for _, s := range sequences {
		for _, y := range s.Targets {
			if y != nil {
				return len(y)
			}
		}
	}
	return 0
}

func (n *Network) release() {
	n.sequences = nil
	n.workers = nil
	n.ranges = nil
}

// Step trains on one batch of sequence indices: gradients are summed over
// the batch, averaged, clipped per element and applied in a single update.
// It implements train.Learner.
func (n *Network) Step(batch []int) error {
	if n.workers == nil {
		return errs.Uninitialized("step")
	}

	n.ranges = parallel.Split(len(batch), parallel.Workers(len(n.workers)))
	parallel.Run(n.ranges, func(r parallel.Range) {
		w := n.workers[r.Worker]
		w.grads.Zero()
		for _, idx := range batch[r.Start:r.End] {
			s := n.sequences[idx]
			n.backward(n.forward(s.Inputs), s.Targets, w.grads)
		}
	})

	total := n.workers[0].grads
	for _, r := range n.ranges[1:] {
		if err := total.Add(n.workers[r.Worker].grads); err != nil {
			return err
		}
	}

	total.Scale(1 / float64(len(batch)))
	total.Clip(n.opts.ClipGradient)
	return n.opt.Update(n.params, total)
}

// Evaluate returns the mean sequence error over the training sequences. It
// implements train.Learner.
func (n *Network) Evaluate() (float64, error) {
	if n.workers == nil {
		return 0, errs.Uninitialized("evaluate")
	}

	ranges := parallel.Split(len(n.sequences), parallel.Workers(len(n.workers)))
	parallel.Run(ranges, func(r parallel.Range) {
		w := n.workers[r.Worker]
		w.errSum = 0
		for _, s := range n.sequences[r.Start:r.End] {
			w.errSum += sequenceError(n.forward(s.Inputs).Outputs, s.Targets)
		}
	})

	var sum float64
	for _, r := range ranges {
		sum += n.workers[r.Worker].errSum
	}
	return sum / float64(len(n.sequences)), nil
}
