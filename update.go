package gopreint

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/YiChenCityU/gopreint/so3"
)

// UpdateEstimate propagates the tangent state ζ through one bias-corrected
// measurement pair over Δt. The mean update is exact for the rotation,
// position and velocity kinematics: the rotation block is composed through
// the inverse derivative of the exponential map rather than added naively.
//
// A, Ba and Bw are optional output slots. When non-nil they receive the
// Jacobians of the propagated state with respect to ζ (9x9), the corrected
// specific force (9x3) and the corrected angular rate (9x3). Of those only
// the rotation self-derivative inside A uses a first-order small-angle
// approximation; everything else is exact.
func UpdateEstimate(ζ Vector9, correctedAcc, correctedOmega r3.Vec, Δt float64, A, Ba, Bw *mat.Dense) (Vector9, error) {
	if Δt <= 0 {
		return Vector9{}, fmt.Errorf("gopreint: time step must be positive, got Δt=%v", Δt)
	}
	if A != nil {
		if r, c := A.Dims(); r != 9 || c != 9 {
			return Vector9{}, fmt.Errorf("gopreint: state Jacobian slot must be 9x9, got %dx%d", r, c)
		}
	}
	if Ba != nil {
		if r, c := Ba.Dims(); r != 9 || c != 3 {
			return Vector9{}, fmt.Errorf("gopreint: specific-force Jacobian slot must be 9x3, got %dx%d", r, c)
		}
	}
	if Bw != nil {
		if r, c := Bw.Dims(); r != 9 || c != 3 {
			return Vector9{}, fmt.Errorf("gopreint: angular-rate Jacobian slot must be 9x3, got %dx%d", r, c)
		}
	}

	aΔt := r3.Scale(Δt, correctedAcc)
	ωΔt := r3.Scale(Δt, correctedOmega)

	// Exact mean propagation through the exponential map.
	θ := ζ.DR()
	R, D := so3.ExpAndJacobian(θ)
	invD, err := so3.JacobianInv(θ)
	if err != nil {
		return Vector9{}, err
	}
	RaΔt := R.MulVec(aΔt)

	halfΔt := 0.5 * Δt
	var ζplus Vector9
	ζplus.SetDR(r3.Add(θ, invD.MulVec(ωΔt)))
	ζplus.SetDP(r3.Add(r3.Add(ζ.DP(), r3.Scale(Δt, ζ.DV())), r3.Scale(halfΔt, RaΔt)))
	ζplus.SetDV(r3.Add(ζ.DV(), RaΔt))

	if A != nil {
		// Exact derivative of R·a·Δt with respect to θ.
		dRaΔtdθ := so3.Mul(so3.Mul(R, so3.Skew(r3.Scale(-1, aΔt))), D)
		// First-order approximation of the derivative of invD·ω·Δt.
		dθdθ := so3.Skew(r3.Scale(-0.5, ωΔt))

		A.Zero()
		for i := 0; i < 9; i++ {
			A.Set(i, i, 1)
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				A.Set(i, j, A.At(i, j)+dθdθ.At(i, j))
				A.Set(3+i, j, dRaΔtdθ.At(i, j)*halfΔt)
				A.Set(6+i, j, dRaΔtdθ.At(i, j))
			}
			A.Set(3+i, 6+i, Δt)
		}

	}
	if Ba != nil {
		Ba.Zero()
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				Ba.Set(3+i, j, R.At(i, j)*Δt*halfΔt)
				Ba.Set(6+i, j, R.At(i, j)*Δt)
			}
		}
	}
	if Bw != nil {
		Bw.Zero()
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				Bw.Set(i, j, invD.At(i, j)*Δt)
			}
		}
	}

	return ζplus, nil
}
