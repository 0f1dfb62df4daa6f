package gopreint

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/YiChenCityU/gopreint/so3"
)

// NavState is a navigation state on the manifold: attitude (body to
// navigation frame), position and velocity in the navigation frame.
type NavState struct {
	Attitude *r3.Mat
	Position r3.Vec
	Velocity r3.Vec
}

// NewNavState returns a NavState with identity attitude at the origin.
func NewNavState() NavState {
	return NavState{Attitude: so3.Exp(r3.Vec{})}
}

// Retract maps a tangent-space perturbation onto the manifold: the rotation
// block composes through the exponential map while the position and velocity
// blocks, expressed in the body frame, are rotated into the navigation frame
// and added.
func (s NavState) Retract(ζ Vector9) NavState {
	return NavState{
		Attitude: so3.Mul(s.Attitude, so3.Exp(ζ.DR())),
		Position: r3.Add(s.Position, s.Attitude.MulVec(ζ.DP())),
		Velocity: r3.Add(s.Velocity, s.Attitude.MulVec(ζ.DV())),
	}
}

// LocalCoordinates is the inverse of Retract: the tangent-space perturbation
// taking s to t.
func (s NavState) LocalCoordinates(t NavState) Vector9 {
	var ζ Vector9
	ζ.SetDR(so3.Log(so3.Mul(so3.T(s.Attitude), t.Attitude)))
	ζ.SetDP(s.Attitude.MulVecTrans(r3.Sub(t.Position, s.Position)))
	ζ.SetDV(s.Attitude.MulVecTrans(r3.Sub(t.Velocity, s.Velocity)))
	return ζ
}

// String implements the Stringer interface.
func (s NavState) String() string {
	return fmt.Sprintf("NavState{θ=%+v p=%+v v=%+v}", so3.Log(s.Attitude), s.Position, s.Velocity)
}
