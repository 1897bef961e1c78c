// Package supervector flattens per-component GMM parameters into a single
// vector and back.
//
// The layout is component-major: element (c, d) lives at index c*Dim + d.
package supervector

import (
	"github.com/ieee0824/linscore/errdefs"
	"github.com/ieee0824/linscore/internal/mathutil"
)

// Shape is the (components, feature dimension) pair shared by a UBM, its
// models and the statistics scored against it.
type Shape struct {
	Components int
	Dim        int
}

// Len returns the supervector length Components*Dim.
func (s Shape) Len() int { return s.Components * s.Dim }

// Index returns the supervector index of component c, dimension d.
func (s Shape) Index(c, d int) int { return c*s.Dim + d }

// Validate reports whether both sides of the shape are positive.
func (s Shape) Validate() error {
	if s.Components <= 0 || s.Dim <= 0 {
		return errdefs.Shapef("invalid shape %dx%d", s.Components, s.Dim)
	}
	return nil
}

// Check returns an ErrShape error naming what when len(v) != s.Len().
func (s Shape) Check(v []float64, what string) error {
	if len(v) != s.Len() {
		return errdefs.Shapef("%s: length %d, want %d (%dx%d)", what, len(v), s.Len(), s.Components, s.Dim)
	}
	return nil
}

// ShapeOf returns the shape of a rectangular matrix. Ragged or empty input
// yields ErrShape.
func ShapeOf(m [][]float64) (Shape, error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return Shape{}, errdefs.Shapef("empty matrix")
	}
	s := Shape{Components: len(m), Dim: len(m[0])}
	for c, row := range m {
		if len(row) != s.Dim {
			return Shape{}, errdefs.Shapef("row %d has %d columns, want %d", c, len(row), s.Dim)
		}
	}
	return s, nil
}

// Flatten packs m[c][d] into a new supervector.
func Flatten(m [][]float64) ([]float64, error) {
	s, err := ShapeOf(m)
	if err != nil {
		return nil, err
	}
	v := make([]float64, s.Len())
	for c, row := range m {
		copy(v[s.Index(c, 0):], row)
	}
	return v, nil
}

// Unflatten unpacks a supervector into a new c x d matrix.
func Unflatten(v []float64, c, d int) ([][]float64, error) {
	s := Shape{Components: c, Dim: d}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.Check(v, "supervector"); err != nil {
		return nil, err
	}
	m := mathutil.NewMat(c, d)
	for i := range m {
		copy(m[i], v[s.Index(i, 0):s.Index(i+1, 0)])
	}
	return m, nil
}
