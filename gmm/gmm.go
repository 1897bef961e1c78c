// Package gmm holds diagonal-covariance Gaussian mixture parameters and the
// per-utterance sufficient statistics scored against them.
package gmm

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/ieee0824/linscore/errdefs"
	"github.com/ieee0824/linscore/internal/mathutil"
	"github.com/ieee0824/linscore/supervector"
)

// GMM is a Gaussian Mixture Model with diagonal covariance.
//
// Means and variances are stored packed as supervectors (component-major).
// A GMM is not safe for concurrent mutation; readers may share it freely.
type GMM struct {
	shape    supervector.Shape
	weights  []float64 // [k]
	mean     []float64 // [k*dim]
	variance []float64 // [k*dim]

	// Pre-computed by precompute(), used for frame posteriors.
	invVar   []float64 // [k*dim]
	logConst []float64 // [k] - logWeight - logNormConst per component
}

// New creates a GMM from per-component parameters. weights has one entry
// per component, means and variances are k x dim. Variances must be strictly
// positive; no flooring is applied.
func New(weights []float64, means, variances [][]float64) (*GMM, error) {
	shape, err := supervector.ShapeOf(means)
	if err != nil {
		return nil, errors.Wrap(err, "means")
	}
	vshape, err := supervector.ShapeOf(variances)
	if err != nil {
		return nil, errors.Wrap(err, "variances")
	}
	if vshape != shape {
		return nil, errdefs.Shapef("variances are %dx%d, means are %dx%d",
			vshape.Components, vshape.Dim, shape.Components, shape.Dim)
	}
	mean, _ := supervector.Flatten(means)
	variance, _ := supervector.Flatten(variances)
	return newGMM(shape, weights, mean, variance)
}

// NewFromSupervectors creates a GMM from packed mean and variance
// supervectors of length len(weights)*dim.
func NewFromSupervectors(weights, mean, variance []float64, dim int) (*GMM, error) {
	shape := supervector.Shape{Components: len(weights), Dim: dim}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return newGMM(shape, weights, mathutil.CloneVec(mean), mathutil.CloneVec(variance))
}

func newGMM(shape supervector.Shape, weights, mean, variance []float64) (*GMM, error) {
	if len(weights) != shape.Components {
		return nil, errdefs.Shapef("weights: length %d, want %d", len(weights), shape.Components)
	}
	if err := shape.Check(mean, "mean supervector"); err != nil {
		return nil, err
	}
	if err := shape.Check(variance, "variance supervector"); err != nil {
		return nil, err
	}
	for c, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errdefs.Valuef("weight[%d] = %g", c, w)
		}
	}
	if floats.Sum(weights) <= 0 {
		return nil, errdefs.Valuef("weights sum to zero")
	}
	if i := mathutil.FirstNonFinite(mean); i >= 0 {
		return nil, errdefs.Valuef("mean[%d] = %g", i, mean[i])
	}
	if err := checkVariance(variance); err != nil {
		return nil, err
	}
	g := &GMM{
		shape:    shape,
		weights:  mathutil.CloneVec(weights),
		mean:     mean,
		variance: variance,
	}
	g.precompute()
	return g, nil
}

func checkVariance(v []float64) error {
	if i := mathutil.FirstNonFinite(v); i >= 0 {
		return errdefs.Domainf("variance[%d] = %g", i, v[i])
	}
	if i := floats.MinIdx(v); v[i] <= 0 {
		return errdefs.Domainf("variance[%d] = %g, must be positive", i, v[i])
	}
	return nil
}

// precompute recalculates cached normalization constants and inverse variances.
// Must be called after updating mean, variance, or weights.
func (g *GMM) precompute() {
	k, dim := g.shape.Components, g.shape.Dim
	g.invVar = make([]float64, k*dim)
	g.logConst = make([]float64, k)
	for c := 0; c < k; c++ {
		off := g.shape.Index(c, 0)
		sumLog := 0.0
		for d := 0; d < dim; d++ {
			g.invVar[off+d] = 1.0 / g.variance[off+d]
			sumLog += math.Log(g.variance[off+d])
		}
		logW := mathutil.LogZero
		if g.weights[c] > 0 {
			logW = math.Log(g.weights[c])
		}
		g.logConst[c] = logW - (float64(dim)/2.0*math.Log(2*math.Pi) + 0.5*sumLog)
	}
}

// NumComponents returns the number of mixture components.
func (g *GMM) NumComponents() int { return g.shape.Components }

// Dim returns the feature dimension.
func (g *GMM) Dim() int { return g.shape.Dim }

// Shape returns the (components, dim) pair.
func (g *GMM) Shape() supervector.Shape { return g.shape }

// Weights returns a copy of the mixture weights.
func (g *GMM) Weights() []float64 { return mathutil.CloneVec(g.weights) }

// Means returns a copy of the means as a k x dim matrix.
func (g *GMM) Means() [][]float64 {
	m, _ := supervector.Unflatten(g.mean, g.shape.Components, g.shape.Dim)
	return m
}

// Variances returns a copy of the variances as a k x dim matrix.
func (g *GMM) Variances() [][]float64 {
	m, _ := supervector.Unflatten(g.variance, g.shape.Components, g.shape.Dim)
	return m
}

// MeanSupervector returns a copy of the packed means.
func (g *GMM) MeanSupervector() []float64 { return mathutil.CloneVec(g.mean) }

// VarianceSupervector returns a copy of the packed variances.
func (g *GMM) VarianceSupervector() []float64 { return mathutil.CloneVec(g.variance) }

// SetMeanSupervector replaces all means from a packed supervector.
func (g *GMM) SetMeanSupervector(v []float64) error {
	if err := g.shape.Check(v, "mean supervector"); err != nil {
		return err
	}
	if i := mathutil.FirstNonFinite(v); i >= 0 {
		return errdefs.Valuef("mean[%d] = %g", i, v[i])
	}
	g.mean = mathutil.CloneVec(v)
	return nil
}

// SetVarianceSupervector replaces all variances from a packed supervector.
func (g *GMM) SetVarianceSupervector(v []float64) error {
	if err := g.shape.Check(v, "variance supervector"); err != nil {
		return err
	}
	if err := checkVariance(v); err != nil {
		return err
	}
	g.variance = mathutil.CloneVec(v)
	g.precompute()
	return nil
}

// componentLogProbs writes log(w_c) + log N(x; μ_c, σ_c) into dst[c] for every
// component and returns their log-sum. Uses the packed layout for cache
// locality.
func (g *GMM) componentLogProbs(x, dst []float64) float64 {
	k, dim := g.shape.Components, g.shape.Dim
	for c := 0; c < k; c++ {
		off := c * dim
		cm := g.mean[off : off+dim]
		cv := g.invVar[off : off+dim]
		maha := 0.0
		for i, xi := range x {
			diff := xi - cm[i]
			maha += diff * diff * cv[i]
		}
		dst[c] = g.logConst[c] - 0.5*maha
	}
	return mathutil.LogSumExp(dst[:k])
}
