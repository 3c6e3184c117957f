package errs

import (
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"configuration", Configuration("activation", "unknown name %q", "swish"), IsConfiguration},
		{"uninitialized", Uninitialized("run"), IsUninitialized},
		{"shape", ShapeMismatch("weights.0", []int{3, 2}, []int{2, 3}), IsShapeMismatch},
		{"io", IO("read", "model.snp", os.ErrNotExist), IsIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.is(tt.err))
			assert.True(t, tt.is(errors.Wrap(tt.err, "outer")), "predicate must see through wrapping")
		})
	}

	assert.False(t, IsConfiguration(Uninitialized("run")))
	assert.False(t, IsShapeMismatch(nil))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "configuration: dropout: must be in [0, 1)", Configuration("dropout", "must be in [0, 1)").Error())
	assert.Equal(t, "run: called before initialize", Uninitialized("run").Error())
	assert.Equal(t, "shape mismatch for b: want [3], got [4]", ShapeMismatch("b", []int{3}, []int{4}).Error())
}

func TestIOErrorUnwrap(t *testing.T) {
	err := IO("write", "/nope/model.snp", os.ErrPermission)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Op)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestShapeMismatchCopiesShapes(t *testing.T) {
	want := []int{2, 2}
	err := ShapeMismatch("w", want, []int{1})
	want[0] = 9

	var shapeErr *ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, []int{2, 2}, shapeErr.Want)
}
