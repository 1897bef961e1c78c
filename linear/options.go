package linear

import (
	"io"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/ieee0824/linscore/supervector"
)

// DefaultOffsetWeight is the factor applied to a channel offset when
// centring first-order statistics: center = ubmMean + w*offset.
const DefaultOffsetWeight = 0.5

// Option configures a Scorer.
type Option func(*Scorer)

// WithWorkers bounds the number of goroutines used per call. Values below 1
// select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(s *Scorer) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		s.workers = n
	}
}

// WithOffsetWeight sets the channel offset factor w. A weight of 1 applies
// offsets at full strength.
func WithOffsetWeight(w float64) Option {
	return func(s *Scorer) {
		s.offsetWeight = w
	}
}

// WithStrictTotal makes Score reject statistics whose total occupancy differs
// from the sum of their component occupancies by more than tol.
func WithStrictTotal(tol float64) Option {
	return func(s *Scorer) {
		s.strictTotal = tol
		s.strict = true
	}
}

// WithShape pins the (components, dim) pair every input must match. Without
// it the shape is taken from the first statistics object.
func WithShape(shape supervector.Shape) Option {
	return func(s *Scorer) {
		s.shape = shape
		s.hasShape = true
	}
}

// WithLogger sets the logger for per-call debug entries.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
