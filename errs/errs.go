// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package errs exposes the typed errors returned by networks, optimizers and
// snapshot I/O. Match them with errors.As or the Is* predicates.
package errs

import (
	"github.com/born-ml/synapse/internal/errs"
)

// ConfigurationError reports an invalid option, name or dataset.
type ConfigurationError = errs.ConfigurationError

// UninitializedStateError reports use of a network or optimizer before
// initialization.
type UninitializedStateError = errs.UninitializedStateError

// ShapeMismatchError reports tensors or samples of the wrong size.
type ShapeMismatchError = errs.ShapeMismatchError

// IOError reports a snapshot read or write failure.
type IOError = errs.IOError

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool { return errs.IsConfiguration(err) }

// IsUninitialized reports whether err is an UninitializedStateError.
func IsUninitialized(err error) bool { return errs.IsUninitialized(err) }

// IsShapeMismatch reports whether err is a ShapeMismatchError.
func IsShapeMismatch(err error) bool { return errs.IsShapeMismatch(err) }

// IsIO reports whether err is an IOError.
func IsIO(err error) bool { return errs.IsIO(err) }
