// Package errdefs defines the error kinds reported by the scoring packages.
//
// Errors are returned wrapped with context; classify them with errors.Is or
// the Is* helpers below.
package errdefs

import "github.com/pkg/errors"

var (
	// ErrShape reports a (components, dim) mismatch between models, UBM,
	// statistics or channel offsets.
	ErrShape = errors.New("shape mismatch")

	// ErrValue reports an out-of-range input value, such as a negative
	// occupancy count.
	ErrValue = errors.New("invalid value")

	// ErrDomain reports an input for which the score is undefined: zero
	// total occupancy under normalization or a non-positive UBM variance.
	ErrDomain = errors.New("domain error")
)

// Shapef wraps ErrShape with a formatted message.
func Shapef(format string, args ...any) error {
	return errors.Wrapf(ErrShape, format, args...)
}

// Valuef wraps ErrValue with a formatted message.
func Valuef(format string, args ...any) error {
	return errors.Wrapf(ErrValue, format, args...)
}

// Domainf wraps ErrDomain with a formatted message.
func Domainf(format string, args ...any) error {
	return errors.Wrapf(ErrDomain, format, args...)
}

func IsShape(err error) bool  { return errors.Is(err, ErrShape) }
func IsValue(err error) bool  { return errors.Is(err, ErrValue) }
func IsDomain(err error) bool { return errors.Is(err, ErrDomain) }
