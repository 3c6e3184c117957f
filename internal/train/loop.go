// Package train implements the epoch loop shared by the feedforward and LSTM
// engines: shuffling, batching, best-weight tracking with patience, learning
// rate decay, wall-clock timeout, progress logging and callbacks.
//
// The loop is single-threaded and synchronous. An engine plugs in through the
// Learner interface; Step owns the forward/backward work for one batch and
// the single optimizer update that follows it.
package train

import (
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/born-ml/synapse/internal/errs"
	"github.com/born-ml/synapse/internal/nn"
	"github.com/born-ml/synapse/internal/optim"
	"github.com/born-ml/synapse/internal/tensor"
)

// Learner is a model the loop can train.
type Learner interface {
	// Parameters returns the trainable parameters in a stable order.
	Parameters() []*nn.Parameter

	// Optimizer returns the optimizer whose learning rate the loop decays.
	Optimizer() optim.Optimizer

	// Step trains on the samples at the given indices, calling the
	// optimizer exactly once.
	Step(batch []int) error

	// Evaluate returns the mean per-sample error over the whole training
	// set with the current parameters and dropout off.
	Evaluate() (float64, error)
}

// Status is passed to Options.Callback.
type Status struct {
	Iterations   int
	Error        float64
	LearningRate float64
}

// Stats are the cumulative metrics of the most recent training run.
type Stats struct {
	Error      float64   `json:"error"`
	Iterations int       `json:"iterations"`
	Time       float64   `json:"time"` // Seconds
	ErrorLog   []float64 `json:"errorLog"`
}

// Stop reasons reported in the final log line.
const (
	reasonThreshold  = "error threshold reached"
	reasonIterations = "iteration limit reached"
	reasonTimeout    = "timeout"
	reasonPatience   = "early stopping"
)

// Run trains l on n samples until the error threshold, the iteration cap,
// the timeout or early stopping ends it.
//
// Each epoch shuffles the sample order with r, feeds consecutive batches of
// opts.BatchSize indices to Step (all n when BatchSize is 0) and then scores
// the updated parameters with Evaluate. The parameters of the best epoch are
// kept; after opts.Patience epochs without improvement they are restored and
// training stops.
func Run(l Learner, n int, r *rand.Rand, opts Options) (Stats, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return Stats{}, err
	}
	if n <= 0 {
		return Stats{}, errs.Configuration("data", "training set is empty")
	}

	start := time.Now()
	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = n
	}
	params := l.Parameters()
	opt := l.Optimizer()

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	stats := Stats{Error: 1}
	best := math.Inf(1)
	var bestParams []*tensor.Dense
	stale := 0
	reason := reasonIterations

	for stats.Iterations < opts.Iterations {
		if opts.Timeout > 0 && time.Since(start) >= opts.Timeout {
			reason = reasonTimeout
			break
		}

		r.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		for b := 0; b < n; b += batchSize {
			if err := l.Step(order[b:min(b+batchSize, n)]); err != nil {
				stats.Time = time.Since(start).Seconds()
				return stats, err
			}
		}
		epochErr, err := l.Evaluate()
		if err != nil {
			stats.Time = time.Since(start).Seconds()
			return stats, err
		}

		stats.Iterations++
		stats.Error = epochErr
		stats.ErrorLog = append(stats.ErrorLog, stats.Error)

		if stats.Error < best {
			best = stats.Error
			bestParams = snapshot(params, bestParams)
			stale = 0
		} else {
			stale++
		}

		if opts.Logger != nil && stats.Iterations%opts.LogPeriod == 0 {
			opts.Logger.WithFields(logrus.Fields{
				"iterations":   stats.Iterations,
				"error":        stats.Error,
				"learningRate": opt.LearningRate(),
			}).Info("training progress")
		}

		if opts.Callback != nil && stats.Iterations%opts.CallbackPeriod == 0 {
			status := Status{Iterations: stats.Iterations, Error: stats.Error, LearningRate: opt.LearningRate()}
			if err := opts.Callback(status); err != nil {
				stats.Time = time.Since(start).Seconds()
				return stats, err
			}
		}

		if stats.Error <= opts.ErrorThresh {
			reason = reasonThreshold
			break
		}

		if opts.Patience > 0 && stale >= opts.Patience {
			if err := nn.RestoreParameters(params, bestParams); err != nil {
				return stats, err
			}
			stats.Error = best
			reason = reasonPatience
			break
		}

		opt.SetLearningRate(opt.LearningRate() * opts.DecayRate)
	}

	stats.Time = time.Since(start).Seconds()

	if opts.Logger != nil {
		opts.Logger.WithFields(logrus.Fields{
			"iterations": stats.Iterations,
			"error":      stats.Error,
			"seconds":    stats.Time,
			"reason":     reason,
		}).Info("training finished")
	}

	return stats, nil
}

// snapshot copies params into dst, allocating it on first use.
func snapshot(params []*nn.Parameter, dst []*tensor.Dense) []*tensor.Dense {
	if dst == nil {
		return nn.CloneParameters(params)
	}
	for i, p := range params {
		copy(dst[i].Data(), p.Tensor().Data())
	}
	return dst
}
