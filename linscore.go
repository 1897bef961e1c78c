// Package linscore scores speaker models against utterance statistics with
// the linear approximation of the GMM log-likelihood ratio.
//
// Callers holding full GMMs use ScoreModels; callers holding raw mean and
// variance supervectors use ScoreSupervectors. Both produce the same matrix
// for equivalent inputs.
package linscore

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ieee0824/linscore/errdefs"
	"github.com/ieee0824/linscore/gmm"
	"github.com/ieee0824/linscore/linear"
)

// Option configures scoring. See the linear package for the available options.
type Option = linear.Option

// ScoreModels scores every model against every statistics object relative to
// ubm. Only the model means are used; model variances and weights are ignored.
// The returned matrix has one row per model and one column per statistics
// object.
func ScoreModels(models []*gmm.GMM, ubm *gmm.GMM, stats []*gmm.Stats, offsets [][]float64,
	normalize bool, opts ...Option) (*mat.Dense, error) {

	if ubm == nil {
		return nil, errdefs.Valuef("UBM is nil")
	}
	svs, err := MeanSupervectors(models, ubm)
	if err != nil {
		return nil, err
	}
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, linear.WithShape(ubm.Shape()))
	return linear.Score(svs, ubm.MeanSupervector(), ubm.VarianceSupervector(), stats, offsets, normalize, all...)
}

// ScoreSupervectors scores raw model mean supervectors against stats
// relative to a UBM given by its mean and variance supervectors.
func ScoreSupervectors(models [][]float64, ubmMean, ubmVariance []float64, stats []*gmm.Stats,
	offsets [][]float64, normalize bool, opts ...Option) (*mat.Dense, error) {
	return linear.Score(models, ubmMean, ubmVariance, stats, offsets, normalize, opts...)
}

// MeanSupervectors extracts the mean supervector of every model, checking
// that each matches the UBM's (components, dim).
func MeanSupervectors(models []*gmm.GMM, ubm *gmm.GMM) ([][]float64, error) {
	svs := make([][]float64, len(models))
	for i, m := range models {
		if m == nil {
			return nil, errdefs.Valuef("model %d is nil", i)
		}
		if m.Shape() != ubm.Shape() {
			return nil, errdefs.Shapef("model %d: shape %dx%d, UBM is %dx%d",
				i, m.NumComponents(), m.Dim(), ubm.NumComponents(), ubm.Dim())
		}
		svs[i] = m.MeanSupervector()
	}
	return svs, nil
}
