package gopreint

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/YiChenCityU/gopreint/so3"
)

// Predict combines the finished window with the motion state valid at the
// start of the window. The aggregated position and velocity increments are
// corrected for the initial velocity and the gravity accumulated over the
// window, both re-expressed in the initial body frame, and the corrected
// increment is retracted onto the manifold.
//
// If bias differs from the snapshot used during integration, a first-order
// correction from the accumulated bias partials is applied, so a consumer
// can re-linearize a window around an updated bias without re-streaming the
// raw samples.
//
// H1 and H2 are optional output slots for the Jacobians of the predicted
// state with respect to the initial state (9x9) and the bias (9x6, columns
// ordered accelerometer then gyroscope).
func (ag *Aggregator) Predict(initial NavState, bias Bias, H1, H2 *mat.Dense) (NavState, error) {
	if H1 != nil {
		if err := checkMatDims(H1, mat.NewDense(9, 9, nil), "H1", "9x9", rowsAndcols); err != nil {
			return NavState{}, err
		}
	}
	if H2 != nil {
		if err := checkMatDims(H2, mat.NewDense(9, 6, nil), "H2", "9x6", rowsAndcols); err != nil {
			return NavState{}, err
		}
	}

	// First-order re-linearization around the supplied bias.
	ζ := ag.zeta
	δba := r3.Sub(bias.Accelerometer, ag.bias.Accelerometer)
	δbω := r3.Sub(bias.Gyroscope, ag.bias.Gyroscope)
	for i := 0; i < 9; i++ {
		ζ[i] += ag.dζdba.At(i, 0)*δba.X + ag.dζdba.At(i, 1)*δba.Y + ag.dζdba.At(i, 2)*δba.Z +
			ag.dζdbω.At(i, 0)*δbω.X + ag.dζdbω.At(i, 1)*δbω.Y + ag.dζdbω.At(i, 2)*δbω.Z
	}
	// Position/velocity blocks before the gravity correction, needed below.
	dP0, dV0 := ζ.DP(), ζ.DV()

	// Correct for initial velocity and gravity, in the initial body frame.
	T := ag.elapsed
	Ri := initial.Attitude
	gT := r3.Scale(T, ag.params.Gravity)
	pCorr := Ri.MulVecTrans(r3.Add(r3.Scale(T, initial.Velocity), r3.Scale(0.5*T, gT)))
	vCorr := Ri.MulVecTrans(gT)
	ζ.SetDP(r3.Add(dP0, pCorr))
	ζ.SetDV(r3.Add(dV0, vCorr))

	out := initial.Retract(ζ)

	if H1 == nil && H2 == nil {
		return out, nil
	}

	// Derivatives of the retract at the corrected increment: the rotation
	// block maps through the exponential-map derivative, the linear blocks
	// through the transpose of the final relative rotation.
	E, Jr := so3.ExpAndJacobian(ζ.DR())
	Et := so3.T(E)

	if H1 != nil {
		H1.Zero()
		setBlock(H1, 0, 0, Et)
		setBlock(H1, 3, 3, Et)
		setBlock(H1, 6, 6, Et)
		// Perturbing the initial attitude moves both the retract base point
		// and the body-frame corrections; the increment terms collapse to
		// the pre-correction blocks.
		setBlock(H1, 3, 0, so3.Mul(Et, so3.Skew(r3.Scale(-1, dP0))))
		setBlock(H1, 6, 0, so3.Mul(Et, so3.Skew(r3.Scale(-1, dV0))))
		var TEt mat.Dense
		TEt.Scale(T, Et)
		setBlock(H1, 3, 6, &TEt)
	}
	if H2 != nil {
		dRetract := mat.NewDense(9, 9, nil)
		setBlock(dRetract, 0, 0, Jr)
		setBlock(dRetract, 3, 3, Et)
		setBlock(dRetract, 6, 6, Et)
		dζdb := mat.NewDense(9, 6, nil)
		setBlock(dζdb, 0, 0, ag.dζdba)
		setBlock(dζdb, 0, 3, ag.dζdbω)
		H2.Mul(dRetract, dζdb)
	}
	return out, nil
}

// PredictState is a convenience wrapper around Predict for callers that do
// not need derivatives and reuse the integration bias snapshot.
func (ag *Aggregator) PredictState(initial NavState) (NavState, error) {
	return ag.Predict(initial, ag.bias, nil, nil)
}
