// Package tensor provides the float64 vector/matrix container used for every
// trainable parameter, gradient and optimizer buffer.
//
// Dense stores its elements row-major in a single slice. Shapes are fixed at
// construction; the only way to change a tensor's contents wholesale is
// CopyFrom, which refuses mismatched shapes.
package tensor

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/synapse/internal/errs"
)

// Dense is a row-major vector or matrix of float64.
type Dense struct {
	shape Shape
	data  []float64
}

// NewVector returns a zero-filled vector of length n.
func NewVector(n int) *Dense {
	return &Dense{shape: Shape{n}, data: make([]float64, n)}
}

// NewMatrix returns a zero-filled rows x cols matrix.
func NewMatrix(rows, cols int) *Dense {
	return &Dense{shape: Shape{rows, cols}, data: make([]float64, rows*cols)}
}

// Zeros returns a zero-filled tensor of the given shape.
func Zeros(shape Shape) *Dense {
	return &Dense{shape: shape.Clone(), data: make([]float64, shape.NumElements())}
}

// FromSlice wraps data (without copying) in a tensor of the given shape.
func FromSlice(data []float64, shape Shape) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, errs.ShapeMismatch("data", shape, Shape{len(data)})
	}
	return &Dense{shape: shape.Clone(), data: data}, nil
}

// FromRows copies a nested slice into a matrix. All rows must share a length.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 {
		return nil, errs.Configuration("rows", "empty matrix")
	}
	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errs.ShapeMismatch("row", Shape{cols}, Shape{len(row)})
		}
		copy(m.Row(i), row)
	}
	return m, nil
}

// Shape returns the tensor shape. Callers must not modify it.
func (d *Dense) Shape() Shape {
	return d.shape
}

// Data returns the underlying row-major storage.
func (d *Dense) Data() []float64 {
	return d.data
}

// Len returns the number of elements.
func (d *Dense) Len() int {
	return len(d.data)
}

// Rows returns the number of rows (the length for a vector).
func (d *Dense) Rows() int {
	return d.shape[0]
}

// Cols returns the number of columns (1 for a vector).
func (d *Dense) Cols() int {
	if len(d.shape) == 1 {
		return 1
	}
	return d.shape[1]
}

// Row returns row i of a matrix as a slice sharing storage with d.
func (d *Dense) Row(i int) []float64 {
	c := d.Cols()
	return d.data[i*c : (i+1)*c : (i+1)*c]
}

// At returns element (i, j) of a matrix.
func (d *Dense) At(i, j int) float64 {
	return d.data[i*d.Cols()+j]
}

// Set assigns element (i, j) of a matrix.
func (d *Dense) Set(i, j int, v float64) {
	d.data[i*d.Cols()+j] = v
}

// Clone returns a deep copy.
func (d *Dense) Clone() *Dense {
	data := make([]float64, len(d.data))
	copy(data, d.data)
	return &Dense{shape: d.shape.Clone(), data: data}
}

// CopyFrom overwrites d with the contents of src.
func (d *Dense) CopyFrom(src *Dense) error {
	if !d.shape.Equal(src.shape) {
		return errs.ShapeMismatch("tensor", d.shape, src.shape)
	}
	copy(d.data, src.data)
	return nil
}

// Zero sets every element to 0.
func (d *Dense) Zero() {
	clear(d.data)
}

// Fill sets every element to v.
func (d *Dense) Fill(v float64) {
	for i := range d.data {
		d.data[i] = v
	}
}

// Scale multiplies every element by c.
func (d *Dense) Scale(c float64) {
	floats.Scale(c, d.data)
}

// Add adds src element-wise into d.
func (d *Dense) Add(src *Dense) error {
	if !d.shape.Equal(src.shape) {
		return errs.ShapeMismatch("tensor", d.shape, src.shape)
	}
	floats.Add(d.data, src.data)
	return nil
}

// Clip clamps every element to [-limit, limit].
func (d *Dense) Clip(limit float64) {
	for i, v := range d.data {
		switch {
		case v > limit:
			d.data[i] = limit
		case v < -limit:
			d.data[i] = -limit
		}
	}
}

// MarshalJSON encodes a vector as [..] and a matrix as [[..], ..].
func (d *Dense) MarshalJSON() ([]byte, error) {
	if len(d.shape) == 1 {
		return json.Marshal(d.data)
	}
	rows := make([][]float64, d.Rows())
	for i := range rows {
		rows[i] = d.Row(i)
	}
	return json.Marshal(rows)
}

// UnmarshalJSON decodes either a flat array (vector) or an array of arrays
// (matrix).
func (d *Dense) UnmarshalJSON(b []byte) error {
	var vec []float64
	if err := json.Unmarshal(b, &vec); err == nil {
		*d = Dense{shape: Shape{len(vec)}, data: vec}
		return nil
	}

	var rows [][]float64
	if err := json.Unmarshal(b, &rows); err != nil {
		return errors.Wrap(err, "tensor: expected vector or matrix")
	}
	m, err := FromRows(rows)
	if err != nil {
		return err
	}
	*d = *m
	return nil
}
