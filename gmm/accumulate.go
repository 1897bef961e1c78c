package gmm

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ieee0824/linscore/errdefs"
	"github.com/ieee0824/linscore/internal/mathutil"
)

// Accumulator collects sufficient statistics for a stream of feature frames
// against a UBM. Every frame contributes its component posteriors γ_c:
//
//	n[c]     += γ_c
//	sumPx[c] += γ_c · x
//	T        += 1
type Accumulator struct {
	ubm    *GMM
	n      []float64
	sumPx  []float64
	frames int

	lp []float64 // [k] scratch for component log-likelihoods
}

// NewAccumulator creates an empty accumulator for ubm.
func NewAccumulator(ubm *GMM) *Accumulator {
	k := ubm.NumComponents()
	return &Accumulator{
		ubm:   ubm,
		n:     make([]float64, k),
		sumPx: make([]float64, ubm.shape.Len()),
		lp:    make([]float64, k),
	}
}

// Add accumulates a single frame.
func (a *Accumulator) Add(x []float64) error {
	if err := a.checkFrame(0, x); err != nil {
		return err
	}
	a.add(x)
	return nil
}

// AddBatch accumulates frames in order. All frames are validated first, so a
// bad frame leaves the accumulator unchanged.
func (a *Accumulator) AddBatch(xs [][]float64) error {
	for i, x := range xs {
		if err := a.checkFrame(i, x); err != nil {
			return err
		}
	}
	for _, x := range xs {
		a.add(x)
	}
	return nil
}

func (a *Accumulator) checkFrame(i int, x []float64) error {
	if len(x) != a.ubm.Dim() {
		return errdefs.Shapef("frame %d: dim %d, want %d", i, len(x), a.ubm.Dim())
	}
	if j := mathutil.FirstNonFinite(x); j >= 0 {
		return errdefs.Valuef("frame %d: x[%d] = %g", i, j, x[j])
	}
	return nil
}

func (a *Accumulator) add(x []float64) {
	dim := a.ubm.Dim()
	total := a.ubm.componentLogProbs(x, a.lp)
	for c, lp := range a.lp {
		post := math.Exp(lp - total)
		if post == 0 {
			continue
		}
		a.n[c] += post
		off := c * dim
		floats.AddScaled(a.sumPx[off:off+dim], post, x)
	}
	a.frames++
}

// Frames returns the number of frames accumulated so far.
func (a *Accumulator) Frames() int { return a.frames }

// Stats returns a snapshot of the statistics accumulated so far. T is the
// number of frames.
func (a *Accumulator) Stats() (*Stats, error) {
	return NewStatsFromSupervector(a.n, a.sumPx, a.ubm.Dim(), float64(a.frames))
}

// Reset clears all accumulated statistics.
func (a *Accumulator) Reset() {
	mathutil.FillVec(a.n, 0)
	mathutil.FillVec(a.sumPx, 0)
	a.frames = 0
}
