package mathutil

import "math"

// Vec is a float64 vector.
type Vec = []float64

// Mat is a 2D float64 matrix stored as row-major [][]float64.
type Mat = [][]float64

// NewMat creates a rows x cols matrix initialized to zero.
// All rows share one contiguous backing array.
func NewMat(rows, cols int) Mat {
	m := make(Mat, rows)
	data := make([]float64, rows*cols)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols]
	}
	return m
}

// CloneVec returns a copy of v.
func CloneVec(v Vec) Vec {
	out := make(Vec, len(v))
	copy(out, v)
	return out
}

// FirstNonFinite returns the index of the first NaN or ±Inf element of v,
// or -1 when every element is finite.
func FirstNonFinite(v Vec) int {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return i
		}
	}
	return -1
}

// FillVec fills all elements of an existing vector with val.
func FillVec(v Vec, val float64) {
	for i := range v {
		v[i] = val
	}
}
