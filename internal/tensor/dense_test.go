package tensor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/synapse/internal/errs"
)

func TestShape(t *testing.T) {
	assert.Equal(t, 12, Shape{3, 4}.NumElements())
	assert.Equal(t, "[3x4]", Shape{3, 4}.String())
	assert.True(t, Shape{3, 4}.Equal(Shape{3, 4}))
	assert.False(t, Shape{3, 4}.Equal(Shape{4, 3}))
	assert.False(t, Shape{3}.Equal(Shape{3, 1}))

	require.NoError(t, Shape{2}.Validate())
	assert.True(t, errs.IsConfiguration(Shape{0, 2}.Validate()))
	assert.True(t, errs.IsConfiguration(Shape{1, 2, 3}.Validate()))
}

func TestDenseRowsShareStorage(t *testing.T) {
	m := NewMatrix(2, 3)
	m.Row(1)[2] = 7

	assert.Equal(t, 7.0, m.At(1, 2))
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 7}, m.Data())

	m.Set(0, 1, -1)
	assert.Equal(t, []float64{0, -1, 0}, m.Row(0))
}

func TestDenseCloneIsDeep(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	c := m.Clone()
	c.Set(0, 0, 100)

	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 100.0, c.At(0, 0))
}

func TestDenseCopyFromShapeMismatch(t *testing.T) {
	a := NewMatrix(2, 3)
	b := NewMatrix(3, 2)

	err := a.CopyFrom(b)
	assert.True(t, errs.IsShapeMismatch(err))
	assert.True(t, errs.IsShapeMismatch(a.Add(NewVector(6))))
}

func TestDenseClip(t *testing.T) {
	v, err := FromSlice([]float64{-1e9, -3, 0, 2, 1e12}, Shape{5})
	require.NoError(t, err)

	v.Clip(5)
	assert.Equal(t, []float64{-5, -3, 0, 2, 5}, v.Data())
}

func TestDenseJSON(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	v, err := FromSlice([]float64{0.5, -0.25}, Shape{2})
	require.NoError(t, err)

	mb, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[[1,2,3],[4,5,6]]`, string(mb))

	vb, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `[0.5,-0.25]`, string(vb))

	var m2, v2 Dense
	require.NoError(t, json.Unmarshal(mb, &m2))
	require.NoError(t, json.Unmarshal(vb, &v2))
	assert.Equal(t, Shape{2, 3}, m2.Shape())
	assert.Equal(t, m.Data(), m2.Data())
	assert.Equal(t, Shape{2}, v2.Shape())

	var bad Dense
	assert.True(t, errs.IsShapeMismatch(json.Unmarshal([]byte(`[[1,2],[3]]`), &bad)))
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &bad))
}

func TestKernels(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)

	y := make([]float64, 3)
	MulVec(y, m, []float64{1, -1})
	assert.Equal(t, []float64{-1, -1, -1}, y)

	MulVecAdd(y, m, []float64{1, 0})
	assert.Equal(t, []float64{0, 2, 4}, y)

	z := make([]float64, 2)
	MulVecT(z, m, []float64{1, 0, 2})
	assert.Equal(t, []float64{11, 14}, z)

	g := NewMatrix(3, 2)
	AddOuter(g, 2, []float64{1, 0, -1}, []float64{3, 4})
	assert.Equal(t, []float64{6, 8, 0, 0, -6, -8}, g.Data())
}
