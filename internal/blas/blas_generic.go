//go:build !darwin || !cgo

package blas

import (
	gblas "gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// Backend names the Dgemm implementation compiled into this binary.
const Backend = "gonum"

// Dgemm performs C = alpha*op(A)*op(B) + beta*C with gonum's pure Go BLAS.
// All matrices are row-major. op(X) = X if trans=false, X^T if trans=true.
func Dgemm(transA, transB bool, m, n, k int,
	alpha float64, a []float64, lda int,
	b []float64, ldb int,
	beta float64, c []float64, ldc int) {

	if m == 0 || n == 0 {
		return
	}
	if k == 0 {
		for i := 0; i < m; i++ {
			row := c[i*ldc : i*ldc+n]
			for j := range row {
				row[j] *= beta
			}
		}
		return
	}
	blas64.Implementation().Dgemm(trans(transA), trans(transB), m, n, k,
		alpha, a, lda, b, ldb, beta, c, ldc)
}

func trans(t bool) gblas.Transpose {
	if t {
		return gblas.Trans
	}
	return gblas.NoTrans
}
