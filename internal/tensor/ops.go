package tensor

import "gonum.org/v1/gonum/floats"

// MulVec computes dst = m·x for a rows x cols matrix m and len(x) == cols.
// dst must have length rows.
func MulVec(dst []float64, m *Dense, x []float64) {
	for j := range dst {
		dst[j] = floats.Dot(m.Row(j), x)
	}
}

// MulVecAdd computes dst += m·x.
func MulVecAdd(dst []float64, m *Dense, x []float64) {
	for j := range dst {
		dst[j] += floats.Dot(m.Row(j), x)
	}
}

// MulVecT computes dst += mᵀ·x for a rows x cols matrix m and len(x) == rows.
// dst must have length cols.
func MulVecT(dst []float64, m *Dense, x []float64) {
	for j, xj := range x {
		if xj == 0 {
			continue
		}
		floats.AddScaled(dst, xj, m.Row(j))
	}
}

// AddOuter computes m += alpha · a ⊗ b, where len(a) == rows and len(b) == cols.
func AddOuter(m *Dense, alpha float64, a, b []float64) {
	for i, ai := range a {
		if ai == 0 {
			continue
		}
		floats.AddScaled(m.Row(i), alpha*ai, b)
	}
}
