package train

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/born-ml/synapse/internal/errs"
)

// Defaults applied to zero-valued options.
const (
	DefaultIterations     = 20000
	DefaultErrorThresh    = 0.005
	DefaultDecayRate      = 1.0
	DefaultPatience       = 10
	DefaultLogPeriod      = 10
	DefaultCallbackPeriod = 10
)

// Options configures a training run. Zero values fall back to the defaults
// above; a zero BatchSize trains on the whole set per update, a negative
// Patience disables early stopping and a zero Timeout means no wall-clock
// limit.
type Options struct {
	Iterations     int           `json:"iterations" yaml:"iterations"`         // Maximum number of epochs
	ErrorThresh    float64       `json:"errorThresh" yaml:"errorThresh"`       // Stop once the epoch error falls to this value
	DecayRate      float64       `json:"decayRate" yaml:"decayRate"`           // Learning rate multiplier applied once per epoch, (0, 1]
	BatchSize      int           `json:"batchSize" yaml:"batchSize"`           // Samples per optimizer update; 0 = all
	Patience       int           `json:"patience" yaml:"patience"`             // Non-improving epochs tolerated before restoring the best weights
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`               // Wall-clock limit, checked once per epoch
	LogPeriod      int           `json:"logPeriod" yaml:"logPeriod"`           // Epochs between progress log lines
	CallbackPeriod int           `json:"callbackPeriod" yaml:"callbackPeriod"` // Epochs between Callback invocations

	// Logger receives progress lines; nil disables logging.
	Logger logrus.FieldLogger `json:"-" yaml:"-"`

	// Callback is invoked every CallbackPeriod epochs. A non-nil error aborts
	// training and is returned unchanged; parameters keep their last values.
	Callback func(Status) error `json:"-" yaml:"-"`
}

// DefaultOptions returns the default training options.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults fills zero-valued fields.
func (o Options) WithDefaults() Options {
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.ErrorThresh == 0 {
		o.ErrorThresh = DefaultErrorThresh
	}
	if o.DecayRate == 0 {
		o.DecayRate = DefaultDecayRate
	}
	if o.Patience == 0 {
		o.Patience = DefaultPatience
	}
	if o.LogPeriod == 0 {
		o.LogPeriod = DefaultLogPeriod
	}
	if o.CallbackPeriod == 0 {
		o.CallbackPeriod = DefaultCallbackPeriod
	}
	return o
}

// Validate rejects out-of-range values. Call it after WithDefaults.
func (o Options) Validate() error {
	switch {
	case o.Iterations <= 0:
		return errs.Configuration("iterations", "must be > 0, got %d", o.Iterations)
	case o.ErrorThresh <= 0:
		return errs.Configuration("errorThresh", "must be > 0, got %v", o.ErrorThresh)
	case o.DecayRate <= 0 || o.DecayRate > 1:
		return errs.Configuration("decayRate", "must be in (0, 1], got %v", o.DecayRate)
	case o.BatchSize < 0:
		return errs.Configuration("batchSize", "must be >= 0, got %d", o.BatchSize)
	case o.Timeout < 0:
		return errs.Configuration("timeout", "must be >= 0, got %v", o.Timeout)
	case o.LogPeriod <= 0:
		return errs.Configuration("logPeriod", "must be > 0, got %d", o.LogPeriod)
	case o.CallbackPeriod <= 0:
		return errs.Configuration("callbackPeriod", "must be > 0, got %d", o.CallbackPeriod)
	}
	return nil
}
