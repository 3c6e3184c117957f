// Package errs defines the error taxonomy shared by the training engines.
//
// Every error returned by this module is one of four kinds:
//   - ConfigurationError: unknown activation/optimizer name or invalid option value
//   - UninitializedStateError: an operation invoked before Initialize/Train
//   - ShapeMismatchError: gradients or a loaded snapshot disagree with parameter shapes
//   - IOError: snapshot read/write failures
//
// Errors are wrapped with a stack trace; use the Is* predicates or errors.As to
// inspect them.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigurationError reports a bad option, activation or optimizer name.
type ConfigurationError struct {
	Field  string // Option name (e.g. "activation", "dropout")
	Reason string // Human readable explanation
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// UninitializedStateError reports an operation that requires initialized
// parameters invoked before Initialize or Train.
type UninitializedStateError struct {
	Op string
}

// Error implements the error interface.
func (e *UninitializedStateError) Error() string {
	return fmt.Sprintf("%s: called before initialize", e.Op)
}

// ShapeMismatchError reports a tensor whose shape disagrees with the one
// expected by the current parameters.
type ShapeMismatchError struct {
	Name string
	Want []int
	Got  []int
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch for %s: want %v, got %v", e.Name, e.Want, e.Got)
}

// IOError reports a failed snapshot read or write.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s snapshot: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s snapshot %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Configuration returns a ConfigurationError for field.
func Configuration(field, format string, args ...any) error {
	return errors.WithStack(&ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

// Uninitialized returns an UninitializedStateError for op.
func Uninitialized(op string) error {
	return errors.WithStack(&UninitializedStateError{Op: op})
}

// ShapeMismatch returns a ShapeMismatchError for the named tensor.
func ShapeMismatch(name string, want, got []int) error {
	return errors.WithStack(&ShapeMismatchError{
		Name: name,
		Want: append([]int(nil), want...),
		Got:  append([]int(nil), got...),
	})
}

// IO wraps err as an IOError.
func IO(op, path string, err error) error {
	return errors.WithStack(&IOError{Op: op, Path: path, Err: err})
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsUninitialized reports whether err is an UninitializedStateError.
func IsUninitialized(err error) bool {
	var target *UninitializedStateError
	return errors.As(err, &target)
}

// IsShapeMismatch reports whether err is a ShapeMismatchError.
func IsShapeMismatch(err error) bool {
	var target *ShapeMismatchError
	return errors.As(err, &target)
}

// IsIO reports whether err is an IOError.
func IsIO(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}
