// Package linear computes linear (first-order) approximations of GMM
// log-likelihood ratios directly from sufficient statistics.
//
// For a model mean supervector m, a UBM with mean u and variance v, and
// statistics (n, F, T) with optional channel offset o, the score is
//
//	Σ_c Σ_d (m[c,d] - u[c,d]) / v[c,d] · (F[c,d] - n[c]·(u[c,d] + w·o[c,d]))
//
// optionally divided by T. w is the offset weight (DefaultOffsetWeight).
//
// The whole score matrix is evaluated as one product W·Fᵀ where row m of W is
// (m - u)/v and row s of F is the centred first-order statistic.
package linear

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ieee0824/linscore/errdefs"
	"github.com/ieee0824/linscore/gmm"
	"github.com/ieee0824/linscore/internal/blas"
	"github.com/ieee0824/linscore/internal/mathutil"
	"github.com/ieee0824/linscore/supervector"
)

// Scorer evaluates linear scores with a fixed set of options. A Scorer holds
// no per-call state and may be used concurrently.
type Scorer struct {
	workers      int
	offsetWeight float64
	strict       bool
	strictTotal  float64
	hasShape     bool
	shape        supervector.Shape
	logger       logrus.FieldLogger
}

// NewScorer creates a Scorer.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		workers:      runtime.GOMAXPROCS(0),
		offsetWeight: DefaultOffsetWeight,
		logger:       discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score is NewScorer(opts...).Score(...).
func Score(models [][]float64, ubmMean, ubmVariance []float64, stats []*gmm.Stats,
	offsets [][]float64, normalize bool, opts ...Option) (*mat.Dense, error) {
	return NewScorer(opts...).Score(models, ubmMean, ubmVariance, stats, offsets, normalize)
}

// Score returns the len(models) x len(stats) matrix of linear scores.
//
// models are mean supervectors. offsets is either empty or has one entry per
// statistics object; a nil entry means no offset for that statistics object.
// When normalize is set each column is divided by the total occupancy of its
// statistics.
//
// All inputs are validated before any arithmetic: shape mismatches yield
// errdefs.ErrShape, invalid values errdefs.ErrValue, and a non-positive UBM
// variance or a zero total under normalization errdefs.ErrDomain. Inputs are
// never modified. An empty model or statistics list yields an empty matrix.
func (s *Scorer) Score(models [][]float64, ubmMean, ubmVariance []float64, stats []*gmm.Stats,
	offsets [][]float64, normalize bool) (*mat.Dense, error) {

	shape, err := s.validate(models, ubmMean, ubmVariance, stats, offsets, normalize)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 || len(stats) == 0 {
		return &mat.Dense{}, nil
	}

	M, S, K := len(models), len(stats), shape.Len()
	s.logger.WithFields(logrus.Fields{
		"models":     M,
		"stats":      S,
		"components": shape.Components,
		"dim":        shape.Dim,
		"workers":    s.workers,
		"normalize":  normalize,
		"offsets":    len(offsets) > 0,
		"backend":    blas.Backend,
	}).Debug("linear scoring")

	// W[m] = (model_m - u) / v
	w := make([]float64, M*K)
	err = forEachBlock(M, s.workers, func(lo, hi int) {
		for m := lo; m < hi; m++ {
			row := w[m*K : (m+1)*K]
			floats.SubTo(row, models[m], ubmMean)
			floats.Div(row, ubmVariance)
		}
	})
	if err != nil {
		return nil, err
	}

	// F[s] = sumPx_s - n_s[c] * (u + w*offset_s)
	f := make([]float64, S*K)
	err = forEachBlock(S, s.workers, func(lo, hi int) {
		for j := lo; j < hi; j++ {
			var off []float64
			if len(offsets) > 0 {
				off = offsets[j]
			}
			s.center(f[j*K:(j+1)*K], stats[j], ubmMean, off, shape)
		}
	})
	if err != nil {
		return nil, err
	}

	out := make([]float64, M*S)
	if M >= S {
		err = forEachBlock(M, s.workers, func(lo, hi int) {
			blas.Dgemm(false, true, hi-lo, S, K, 1.0, w[lo*K:hi*K], K, f, K, 0.0, out[lo*S:hi*S], S)
			if normalize {
				normalizeBlock(out, stats, lo, hi, 0, S)
			}
		})
	} else {
		err = forEachBlock(S, s.workers, func(lo, hi int) {
			blas.Dgemm(false, true, M, hi-lo, K, 1.0, w, K, f[lo*K:hi*K], K, 0.0, out[lo:], S)
			if normalize {
				normalizeBlock(out, stats, 0, M, lo, hi)
			}
		})
	}
	if err != nil {
		return nil, err
	}
	return mat.NewDense(M, S, out), nil
}

// center writes the centred first-order statistic of st into dst.
func (s *Scorer) center(dst []float64, st *gmm.Stats, ubmMean, offset []float64, shape supervector.Shape) {
	copy(dst, ubmMean)
	if offset != nil {
		floats.AddScaled(dst, s.offsetWeight, offset)
	}
	for c := 0; c < shape.Components; c++ {
		n := st.Occupancy(c)
		for d := 0; d < shape.Dim; d++ {
			i := shape.Index(c, d)
			dst[i] = st.FirstOrder(c, d) - n*dst[i]
		}
	}
}

func normalizeBlock(out []float64, stats []*gmm.Stats, rowLo, rowHi, colLo, colHi int) {
	S := len(stats)
	for i := rowLo; i < rowHi; i++ {
		for j := colLo; j < colHi; j++ {
			out[i*S+j] /= stats[j].Total()
		}
	}
}

func (s *Scorer) validate(models [][]float64, ubmMean, ubmVariance []float64, stats []*gmm.Stats,
	offsets [][]float64, normalize bool) (supervector.Shape, error) {

	if len(offsets) != 0 && len(offsets) != len(stats) {
		return supervector.Shape{}, errdefs.Shapef("got %d channel offsets for %d statistics", len(offsets), len(stats))
	}
	for j, st := range stats {
		if st == nil {
			return supervector.Shape{}, errdefs.Valuef("stats %d is nil", j)
		}
	}

	shape := s.shape
	switch {
	case s.hasShape:
		if err := shape.Validate(); err != nil {
			return shape, err
		}
	case len(stats) > 0:
		shape = stats[0].Shape()
	default:
		// Nothing fixes (components, dim); only the supervector lengths can
		// be cross-checked.
		shape = supervector.Shape{Components: 1, Dim: len(ubmMean)}
	}

	if err := shape.Check(ubmMean, "UBM mean supervector"); err != nil {
		return shape, err
	}
	if err := shape.Check(ubmVariance, "UBM variance supervector"); err != nil {
		return shape, err
	}
	for m, model := range models {
		if len(model) != shape.Len() {
			return shape, errdefs.Shapef("model %d: mean supervector length %d, want %d", m, len(model), shape.Len())
		}
	}
	for j, st := range stats {
		if st.Shape() != shape {
			return shape, errdefs.Shapef("stats %d: shape %dx%d, want %dx%d",
				j, st.NumComponents(), st.Dim(), shape.Components, shape.Dim)
		}
	}
	for j, off := range offsets {
		if off != nil && len(off) != shape.Len() {
			return shape, errdefs.Shapef("offset %d: length %d, want %d", j, len(off), shape.Len())
		}
	}

	if i := mathutil.FirstNonFinite(ubmVariance); i >= 0 {
		return shape, errdefs.Domainf("UBM variance[%d] = %g", i, ubmVariance[i])
	}
	if len(ubmVariance) > 0 {
		if i := floats.MinIdx(ubmVariance); ubmVariance[i] <= 0 {
			return shape, errdefs.Domainf("UBM variance[%d] = %g, must be positive", i, ubmVariance[i])
		}
	}
	if i := mathutil.FirstNonFinite(ubmMean); i >= 0 {
		return shape, errdefs.Valuef("UBM mean[%d] = %g", i, ubmMean[i])
	}
	for m, model := range models {
		if i := mathutil.FirstNonFinite(model); i >= 0 {
			return shape, errdefs.Valuef("model %d: mean[%d] = %g", m, i, model[i])
		}
	}
	for j, off := range offsets {
		if i := mathutil.FirstNonFinite(off); i >= 0 {
			return shape, errdefs.Valuef("offset %d: [%d] = %g", j, i, off[i])
		}
	}

	for j, st := range stats {
		if s.strict {
			if err := st.CheckTotal(s.strictTotal); err != nil {
				return shape, errors.Wrapf(err, "stats %d", j)
			}
		}
		if normalize && st.Total() == 0 {
			return shape, errdefs.Domainf("stats %d: total occupancy is zero, cannot normalize", j)
		}
	}
	return shape, nil
}
