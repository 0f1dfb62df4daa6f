// Package so3 provides the closed-form exponential and logarithm maps of the
// 3D rotation group, together with the derivative of the exponential map and
// its inverse. It is stateless and operates on r3.Vec tangent vectors and
// *r3.Mat rotation matrices.
package so3

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Below this squared norm, series expansions replace the closed forms.
const nearZero = 1e-10

// Jr is singular where 1-cos‖θ‖ vanishes away from the origin (‖θ‖ = 2πk).
const degenerate = 1e-9

// Skew returns the skew-symmetric cross-product matrix of v, i.e. the matrix
// W such that W·u = v×u for all u.
func Skew(v r3.Vec) *r3.Mat {
	return r3.NewMat([]float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	})
}

// Mul returns the product a·b of two 3x3 matrices.
func Mul(a, b *r3.Mat) *r3.Mat {
	d := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d[3*i+j] = a.At(i, 0)*b.At(0, j) + a.At(i, 1)*b.At(1, j) + a.At(i, 2)*b.At(2, j)
		}
	}
	return r3.NewMat(d)
}

// T returns the transpose of m.
func T(m *r3.Mat) *r3.Mat {
	d := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d[3*i+j] = m.At(j, i)
		}
	}
	return r3.NewMat(d)
}

// combo returns c0·I + c1·W + c2·W² without allocating intermediates.
func combo(c0, c1, c2 float64, w, w2 *r3.Mat) *r3.Mat {
	d := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := c1*w.At(i, j) + c2*w2.At(i, j)
			if i == j {
				v += c0
			}
			d[3*i+j] = v
		}
	}
	return r3.NewMat(d)
}

// Exp returns the rotation matrix of the axis-angle vector θ via the
// Rodrigues formula. A second-order series is used near the origin.
func Exp(θ r3.Vec) *r3.Mat {
	w := Skew(θ)
	w2 := Mul(w, w)
	t2 := r3.Dot(θ, θ)
	if t2 < nearZero {
		return combo(1, 1, 0.5, w, w2)
	}
	t := math.Sqrt(t2)
	return combo(1, math.Sin(t)/t, (1-math.Cos(t))/t2, w, w2)
}

// Jacobian returns the derivative of the exponential map at θ, i.e. the
// matrix Jr such that Exp(θ+δ) ≈ Exp(θ)·Exp(Jr·δ) to first order in δ.
func Jacobian(θ r3.Vec) *r3.Mat {
	w := Skew(θ)
	w2 := Mul(w, w)
	t2 := r3.Dot(θ, θ)
	if t2 < nearZero {
		return combo(1, -0.5, 1.0/6.0, w, w2)
	}
	t := math.Sqrt(t2)
	return combo(1, -(1-math.Cos(t))/t2, (t-math.Sin(t))/(t2*t), w, w2)
}

// ExpAndJacobian returns Exp(θ) together with Jacobian(θ), sharing the
// intermediate skew products.
func ExpAndJacobian(θ r3.Vec) (*r3.Mat, *r3.Mat) {
	w := Skew(θ)
	w2 := Mul(w, w)
	t2 := r3.Dot(θ, θ)
	if t2 < nearZero {
		return combo(1, 1, 0.5, w, w2), combo(1, -0.5, 1.0/6.0, w, w2)
	}
	t := math.Sqrt(t2)
	s, c := math.Sincos(t)
	return combo(1, s/t, (1-c)/t2, w, w2),
		combo(1, -(1-c)/t2, (t-s)/(t2*t), w, w2)
}

// JacobianInv returns the inverse of Jacobian(θ). It errors where the
// Jacobian is singular, i.e. for rotation magnitudes near a multiple of 2π.
func JacobianInv(θ r3.Vec) (*r3.Mat, error) {
	w := Skew(θ)
	w2 := Mul(w, w)
	t2 := r3.Dot(θ, θ)
	if t2 < nearZero {
		return combo(1, 0.5, 1.0/12.0, w, w2), nil
	}
	t := math.Sqrt(t2)
	s, c := math.Sincos(t)
	versine := 1 - c
	if versine < degenerate {
		return nil, fmt.Errorf("so3: exponential map derivative is singular at ‖θ‖=%g", t)
	}
	return combo(1, 0.5, (1-t*s/(2*versine))/t2, w, w2), nil
}

// Log returns the axis-angle vector of the rotation matrix R, the inverse of
// Exp. R must be a proper rotation.
func Log(R *r3.Mat) r3.Vec {
	// Twice the sine-scaled axis, from the antisymmetric part of R.
	u := r3.Vec{
		X: R.At(2, 1) - R.At(1, 2),
		Y: R.At(0, 2) - R.At(2, 0),
		Z: R.At(1, 0) - R.At(0, 1),
	}
	c := 0.5 * (R.At(0, 0) + R.At(1, 1) + R.At(2, 2) - 1)
	switch {
	case c > 1-nearZero:
		// Small angle: θ ≈ u/2 with a curvature correction.
		return r3.Scale(0.5*(1+r3.Dot(u, u)/24), u)
	case c < -1+nearZero:
		// Near π the antisymmetric part degrades; recover the axis from the
		// dominant diagonal of the symmetric part instead.
		t := math.Pi - math.Asin(math.Min(1, 0.5*math.Sqrt(r3.Dot(u, u))))
		// R_ii = c + (1-c)·a_i² for a unit axis a.
		b := [3]float64{
			R.At(0, 0) - c,
			R.At(1, 1) - c,
			R.At(2, 2) - c,
		}
		k := 0
		if b[1] > b[k] {
			k = 1
		}
		if b[2] > b[k] {
			k = 2
		}
		ak := math.Sqrt(math.Max(0, b[k]/(1-c)))
		axis := [3]float64{}
		axis[k] = ak
		for i := 0; i < 3; i++ {
			if i != k {
				axis[i] = (R.At(i, k) + R.At(k, i)) / (2 * (1 - c) * ak)
			}
		}
		a := r3.Vec{X: axis[0], Y: axis[1], Z: axis[2]}
		if r3.Dot(a, u) < 0 {
			a = r3.Scale(-1, a)
		}
		return r3.Scale(t/math.Sqrt(r3.Dot(a, a)), a)
	default:
		t := math.Acos(c)
		return r3.Scale(t/(2*math.Sin(t)), u)
	}
}
