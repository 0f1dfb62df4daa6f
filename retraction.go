package gopreint

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YiChenCityU/gopreint/so3"
)

// NoiseModel re-expresses the aggregated covariance in the coordinate frame
// induced by the retract operation and returns it as a covariance-form noise
// model. The retract Jacobian H maps tangent perturbations at the start of
// the window into perturbations of the retracted state: the rotation block
// through the exponential-map derivative, the position and velocity blocks
// through the transpose of the final relative rotation.
//
// The returned model carries H·cov·Hᵗ. The raw, un-retracted covariance
// remains available from Covariance; mixing the two frames yields an
// inconsistent estimator, so consumers building a fused observation must use
// this model.
func (ag *Aggregator) NoiseModel() (Noise, error) {
	iRj, D := so3.ExpAndJacobian(ag.zeta.DR())
	iRjt := so3.T(iRj)

	H := mat.NewDense(9, 9, nil)
	setBlock(H, 0, 0, D)
	setBlock(H, 3, 3, iRjt)
	setBlock(H, 6, 6, iRjt)

	var tmp, HCHt mat.Dense
	tmp.Mul(H, ag.cov)
	HCHt.Mul(&tmp, H.T())
	retracted, err := AsSymDense(&HCHt)
	if err != nil {
		return nil, err
	}
	return NewGaussian(retracted)
}
