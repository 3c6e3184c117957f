// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train exposes the options and statistics of the training loop
// shared by every network.
package train

import (
	"github.com/born-ml/synapse/internal/train"
)

// Options configures a training run. Zero values fall back to defaults; a
// negative Patience disables early stopping.
type Options = train.Options

// Stats are the metrics of a training run.
type Stats = train.Stats

// Status is passed to Options.Callback.
type Status = train.Status

// DefaultOptions returns the default training options.
func DefaultOptions() Options {
	return train.DefaultOptions()
}
