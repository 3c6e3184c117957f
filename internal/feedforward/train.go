package feedforward

import (
	"math/rand"

	"github.com/born-ml/synapse/internal/data"
	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/parallel"
	"github.com/born-ml/synapse/internal/train"
)

// Train fits the network to samples. Missing topology sizes are taken from
// the first sample. Gradients are summed over each batch and divided by its
// size before the single optimizer update of that batch.
func (n *Network) Train(samples []Sample, opts train.Options) (train.Stats, error) {
	if err := n.prepare(samples); err != nil {
		return train.Stats{}, err
	}
	defer n.release()

	stats, err := train.Run(n, len(n.samples), n.rng, opts)
	n.stats = stats
	return stats, err
}

// prepare validates samples, initializes the network if needed and builds
// the per-worker buffers.
func (n *Network) prepare(samples []Sample) error {
	if len(samples) == 0 {
		return errs.Configuration("data", "training set is empty")
	}
	if !n.IsInitialized() {
		if n.opts.InputSize == 0 {
			n.opts.InputSize = len(samples[0].Input)
		}
		if n.opts.OutputSize == 0 {
			n.opts.OutputSize = len(samples[0].Output)
		}
		if err := n.Initialize(); err != nil {
			return err
		}
	}

	in, out := n.sizes[0], n.sizes[len(n.sizes)-1]
	for _, s := range samples {
		if len(s.Input) != in {
			return errs.ShapeMismatch("sample input", []int{in}, []int{len(s.Input)})
		}
		if len(s.Output) != out {
			return errs.ShapeMismatch("sample output", []int{out}, []int{len(s.Output)})
		}
	}

	n.samples = samples
	if n.opts.Normalize {
		if err := n.normalize(); err != nil {
			return err
		}
	}

	count := parallel.WorkerCount(n.opts.Workers)
	n.workers = make([]*worker, count)
	for i := range n.workers {
		w := &worker{trace: n.newTrace(), grads: nn.ZerosLike(n.params), rng: n.rng}
		if i > 0 {
			//nolint:gosec // Dropout masks are not security-critical
			w.rng = rand.New(rand.NewSource(n.rng.Int63()))
		}
		n.workers[i] = w
	}
	return nil
}

// normalize fits the min-max normalizer on the first Train call and maps
// the samples through it.
func (n *Network) normalize() error {
	if n.norm == nil {
		inputs := make([][]float64, len(n.samples))
		outputs := make([][]float64, len(n.samples))
		for i, s := range n.samples {
			inputs[i], outputs[i] = s.Input, s.Output
		}
		norm, err := data.FitMinMax(inputs, outputs)
		if err != nil {
			return err
		}
		n.norm = norm
	}

	scaled := make([]Sample, len(n.samples))
	for i, s := range n.samples {
		scaled[i] = Sample{Input: n.norm.NormalizeInput(s.Input), Output: n.norm.NormalizeOutput(s.Output)}
	}
	n.samples = scaled
	return nil
}

func (n *Network) release() {
	n.samples = nil
	n.workers = nil
	n.ranges = nil
}

// Step trains on one batch of sample indices. It implements train.Learner.
func (n *Network) Step(batch []int) error {
	if n.workers == nil {
		return errs.Uninitialized("step")
	}

	n.ranges = parallel.Split(len(batch), parallel.Workers(len(n.workers)))
	parallel.Run(n.ranges, func(r parallel.Range) {
		w := n.workers[r.Worker]
		w.grads.Zero()

		var rng *rand.Rand
		if n.opts.Dropout > 0 {
			rng = w.rng
		}
		for _, idx := range batch[r.Start:r.End] {
			s := n.samples[idx]
			n.forward(w.trace, s.Input, rng)
			n.backward(w.trace, s.Output, w.grads)
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

// Evaluate returns the mean squared error over the training samples with
// dropout off. It implements train.Learner.
func (n *Network) Evaluate() (float64, error) {
	if n.workers == nil {
		return 0, errs.Uninitialized("evaluate")
	}

	ranges := parallel.Split(len(n.samples), parallel.Workers(len(n.workers)))
	parallel.Run(ranges, func(r parallel.Range) {
		w := n.workers[r.Worker]
		w.errSum = 0
		for _, s := range n.samples[r.Start:r.End] {
			n.forward(w.trace, s.Input, nil)
			w.errSum += nn.MSE(w.trace.Output(), s.Output)
		}
	})

	var sum float64
	for _, r := range ranges {
		sum += n.workers[r.Worker].errSum
	}
	return sum / float64(len(n.samples)), nil
}
