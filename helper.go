package gopreint

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Identity returns an identity matrix of the provided size.
func Identity(n int) mat.Symmetric {
	vals := make([]float64, n*n)
	for j := 0; j < n*n; j += n + 1 {
		vals[j] = 1
	}
	return mat.NewSymDense(n, vals)
}

// AsSymDense returns a SymDense from the provided square matrix, averaging
// the off-diagonal pairs. It errors if the asymmetry exceeds a tolerance
// scaled by the largest entry, so genuinely lopsided matrices are rejected
// while round-off from covariance recursions is absorbed.
func AsSymDense(m mat.Matrix) (*mat.SymDense, error) {
	r, c := m.Dims()
	if r != c {
		return nil, errors.New("gopreint: matrix must be square")
	}
	maxAbs := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if a := math.Abs(m.At(i, j)); a > maxAbs {
				maxAbs = a
			}
		}
	}
	tol := 1e-9 * (1 + maxAbs)
	out := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < c; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return nil, fmt.Errorf("gopreint: matrix is not symmetric at (%d,%d)", i, j)
			}
			out.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
	return out, nil
}

// IsPSD reports whether the symmetric matrix is positive semi-definite, up
// to a small negative eigenvalue tolerance.
func IsPSD(m mat.Symmetric) bool {
	var es mat.EigenSym
	if ok := es.Factorize(m, false); !ok {
		return false
	}
	for _, λ := range es.Values(nil) {
		if λ < -1e-9 {
			return false
		}
	}
	return true
}

// setBlock copies src into dst starting at row i, column j.
func setBlock(dst *mat.Dense, i, j int, src mat.Matrix) {
	r, c := src.Dims()
	for a := 0; a < r; a++ {
		for b := 0; b < c; b++ {
			dst.Set(i+a, j+b, src.At(a, b))
		}
	}
}

// DimensionAgreement defines how two matrices' dimensions should agree.
type DimensionAgreement uint8

const (
	dimErrMsg                    = "dimensions must agree: "
	rows2cols DimensionAgreement = iota + 1
	cols2rows
	rowsAndcols
)

// checkMatDims checks the matrix dimensions match provided a DimensionAgreement. Returns an error if not.
func checkMatDims(m1, m2 mat.Matrix, name1, name2 string, method DimensionAgreement) error {
	r1, c1 := m1.Dims()
	r2, c2 := m2.Dims()
	switch method {
	case rows2cols:
		if r1 != c2 {
			return fmt.Errorf("%s%s(%dx...) %s(...x%d)", dimErrMsg, name1, r1, name2, c2)
		}
	case cols2rows:
		if c1 != r2 {
			return fmt.Errorf("%s%s(...x%d) %s(%dx...)", dimErrMsg, name1, c1, name2, r2)
		}
	case rowsAndcols:
		if c1 != c2 || r1 != r2 {
			return fmt.Errorf("%s%s(%dx%d) %s(%dx%d)", dimErrMsg, name1, r1, c1, name2, r2, c2)
		}
	}
	return nil
}
