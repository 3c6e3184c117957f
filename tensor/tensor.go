// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the dense float64 tensors that hold network
// parameters.
package tensor

import (
	"github.com/born-ml/synapse/internal/tensor"
)

// Dense is a row-major vector or matrix.
type Dense = tensor.Dense

// Shape is the dimensions of a tensor.
type Shape = tensor.Shape

// NewVector allocates a zero vector of length n.
func NewVector(n int) *Dense {
	return tensor.NewVector(n)
}

// NewMatrix allocates a zero rows x cols matrix.
func NewMatrix(rows, cols int) *Dense {
	return tensor.NewMatrix(rows, cols)
}

// FromRows builds a matrix from equal-length rows.
func FromRows(rows [][]float64) (*Dense, error) {
	return tensor.FromRows(rows)
}
