package gmm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieee0824/linscore/errdefs"
)

func newTestUBM(t *testing.T) *GMM {
	t.Helper()
	ubm, err := New(
		[]float64{0.5, 0.5},
		[][]float64{{3, 70}, {4, 72}},
		[][]float64{{1, 10}, {2, 5}},
	)
	require.NoError(t, err)
	return ubm
}

func TestSupervectors(t *testing.T) {
	ubm := newTestUBM(t)
	assert.Equal(t, 2, ubm.NumComponents())
	assert.Equal(t, 2, ubm.Dim())
	assert.Equal(t, []float64{3, 70, 4, 72}, ubm.MeanSupervector())
	assert.Equal(t, []float64{1, 10, 2, 5}, ubm.VarianceSupervector())
	assert.Equal(t, [][]float64{{3, 70}, {4, 72}}, ubm.Means())
	assert.Equal(t, [][]float64{{1, 10}, {2, 5}}, ubm.Variances())
	assert.Equal(t, []float64{0.5, 0.5}, ubm.Weights())
}

func TestAccessorsReturnCopies(t *testing.T) {
	ubm := newTestUBM(t)
	sv := ubm.MeanSupervector()
	sv[0] = 1000
	ubm.Variances()[0][0] = -1
	ubm.Weights()[0] = 7
	assert.Equal(t, 3.0, ubm.MeanSupervector()[0])
	assert.Equal(t, 1.0, ubm.VarianceSupervector()[0])
	assert.Equal(t, 0.5, ubm.Weights()[0])
}

func TestNewFromSupervectors(t *testing.T) {
	a := newTestUBM(t)
	b, err := NewFromSupervectors([]float64{0.5, 0.5}, []float64{3, 70, 4, 72}, []float64{1, 10, 2, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, a.Means(), b.Means())
	assert.Equal(t, a.Variances(), b.Variances())

	_, err = NewFromSupervectors([]float64{1}, []float64{1, 2, 3}, []float64{1, 1}, 2)
	assert.ErrorIs(t, err, errdefs.ErrShape)
	_, err = NewFromSupervectors([]float64{1}, []float64{1, 2}, []float64{1, 1}, 0)
	assert.ErrorIs(t, err, errdefs.ErrShape)
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name      string
		weights   []float64
		means     [][]float64
		variances [][]float64
		kind      error
	}{
		{"weights length", []float64{1}, [][]float64{{0}, {1}}, [][]float64{{1}, {1}}, errdefs.ErrShape},
		{"ragged means", []float64{0.5, 0.5}, [][]float64{{0, 1}, {1}}, [][]float64{{1, 1}, {1, 1}}, errdefs.ErrShape},
		{"variance shape", []float64{0.5, 0.5}, [][]float64{{0, 1}, {1, 2}}, [][]float64{{1}, {1}, {1}, {1}}, errdefs.ErrShape},
		{"negative weight", []float64{-0.5, 1.5}, [][]float64{{0}, {1}}, [][]float64{{1}, {1}}, errdefs.ErrValue},
		{"zero weights", []float64{0, 0}, [][]float64{{0}, {1}}, [][]float64{{1}, {1}}, errdefs.ErrValue},
		{"nan mean", []float64{0.5, 0.5}, [][]float64{{math.NaN()}, {1}}, [][]float64{{1}, {1}}, errdefs.ErrValue},
		{"zero variance", []float64{0.5, 0.5}, [][]float64{{0}, {1}}, [][]float64{{1}, {0}}, errdefs.ErrDomain},
		{"inf variance", []float64{0.5, 0.5}, [][]float64{{0}, {1}}, [][]float64{{math.Inf(1)}, {1}}, errdefs.ErrDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.weights, tt.means, tt.variances)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestSetSupervectors(t *testing.T) {
	g := newTestUBM(t)
	require.NoError(t, g.SetMeanSupervector([]float64{1, 2, 3, 4}))
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, g.Means())

	require.NoError(t, g.SetVarianceSupervector([]float64{9, 10, 11, 12}))
	assert.Equal(t, [][]float64{{9, 10}, {11, 12}}, g.Variances())

	assert.ErrorIs(t, g.SetMeanSupervector([]float64{1, 2, 3}), errdefs.ErrShape)
	assert.ErrorIs(t, g.SetVarianceSupervector([]float64{1, -2, 3, 4}), errdefs.ErrDomain)
	// failed updates leave the model untouched
	assert.Equal(t, []float64{9, 10, 11, 12}, g.VarianceSupervector())
}

func TestComponentLogProbs(t *testing.T) {
	g, err := New([]float64{0.5, 0.5}, [][]float64{{0}, {5}}, [][]float64{{1}, {1}})
	require.NoError(t, err)

	lp := make([]float64, 2)
	total := g.componentLogProbs([]float64{0}, lp)

	// N(0; 0, 1) = 1/sqrt(2π)
	want0 := math.Log(0.5) - 0.5*math.Log(2*math.Pi)
	want1 := math.Log(0.5) - 0.5*math.Log(2*math.Pi) - 12.5
	assert.InDelta(t, want0, lp[0], 1e-10)
	assert.InDelta(t, want1, lp[1], 1e-10)
	assert.InDelta(t, math.Log(math.Exp(want0)+math.Exp(want1)), total, 1e-10)
}
