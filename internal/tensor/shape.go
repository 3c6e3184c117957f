package tensor

import (
	"fmt"
	"strings"

	"github.com/born-ml/synapse/internal/errs"
)

// Shape represents the dimensions of a tensor.
//
// Parameters in this module are either vectors (Shape{n}) or matrices
// (Shape{rows, cols}).
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape is a vector or matrix with positive dimensions.
func (s Shape) Validate() error {
	if len(s) == 0 || len(s) > 2 {
		return errs.Configuration("shape", "rank %d not supported (want 1 or 2)", len(s))
	}
	for i, dim := range s {
		if dim <= 0 {
			return errs.Configuration("shape", "invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as "[3x4]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprint(dim)
	}
	return "[" + strings.Join(parts, "x") + "]"
}
