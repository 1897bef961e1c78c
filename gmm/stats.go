package gmm

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/ieee0824/linscore/errdefs"
	"github.com/ieee0824/linscore/internal/mathutil"
	"github.com/ieee0824/linscore/supervector"
)

// Stats holds the zero- and first-order sufficient statistics of one
// utterance accumulated against a UBM.
//
// A Stats value is immutable once constructed and may be scored many times
// from many goroutines.
type Stats struct {
	shape supervector.Shape
	n     []float64 // [k] occupancy per component
	sumPx []float64 // [k*dim] first-order statistic, packed
	t     float64   // total occupancy, taken as given
}

// NewStats validates and copies n (length k), sumPx (k x dim) and the total
// occupancy t. t is stored verbatim and is not re-derived from n.
func NewStats(n []float64, sumPx [][]float64, t float64) (*Stats, error) {
	shape, err := supervector.ShapeOf(sumPx)
	if err != nil {
		return nil, errors.Wrap(err, "sumPx")
	}
	flat, _ := supervector.Flatten(sumPx)
	return newStats(shape, mathutil.CloneVec(n), flat, t)
}

// NewStatsFromSupervector is NewStats with a packed first-order statistic of
// length len(n)*dim.
func NewStatsFromSupervector(n, sumPx []float64, dim int, t float64) (*Stats, error) {
	shape := supervector.Shape{Components: len(n), Dim: dim}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return newStats(shape, mathutil.CloneVec(n), mathutil.CloneVec(sumPx), t)
}

func newStats(shape supervector.Shape, n, sumPx []float64, t float64) (*Stats, error) {
	if len(n) != shape.Components {
		return nil, errdefs.Shapef("n: length %d, want %d", len(n), shape.Components)
	}
	if err := shape.Check(sumPx, "sumPx"); err != nil {
		return nil, err
	}
	for c, v := range n {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errdefs.Valuef("n[%d] = %g, must be a non-negative count", c, v)
		}
	}
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return nil, errdefs.Valuef("T = %g, must be a non-negative count", t)
	}
	if i := mathutil.FirstNonFinite(sumPx); i >= 0 {
		return nil, errdefs.Valuef("sumPx[%d] = %g", i, sumPx[i])
	}
	return &Stats{shape: shape, n: n, sumPx: sumPx, t: t}, nil
}

// Occupancy returns the zero-order statistic n[c].
func (s *Stats) Occupancy(c int) float64 { return s.n[c] }

// FirstOrder returns the first-order statistic sumPx[c][d].
func (s *Stats) FirstOrder(c, d int) float64 { return s.sumPx[s.shape.Index(c, d)] }

// Total returns the total occupancy T.
func (s *Stats) Total() float64 { return s.t }

func (s *Stats) NumComponents() int       { return s.shape.Components }
func (s *Stats) Dim() int                 { return s.shape.Dim }
func (s *Stats) Shape() supervector.Shape { return s.shape }

// OccupancyVector returns a copy of n.
func (s *Stats) OccupancyVector() []float64 { return mathutil.CloneVec(s.n) }

// FirstOrderSupervector returns a copy of the packed first-order statistic.
func (s *Stats) FirstOrderSupervector() []float64 { return mathutil.CloneVec(s.sumPx) }

// CheckTotal reports an ErrValue error when T differs from Σ n[c] by more
// than tol.
func (s *Stats) CheckTotal(tol float64) error {
	sum := floats.Sum(s.n)
	if math.Abs(sum-s.t) > tol {
		return errdefs.Valuef("T = %g but occupancies sum to %g", s.t, sum)
	}
	return nil
}
