package gopreint

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// StandardGravity is the conventional value of g, in m/s².
const StandardGravity = 9.81

// Params holds the gravity vector and the continuous-time sensor noise
// covariances shared by all aggregation windows of one IMU. Params is
// immutable after construction and safe to share across goroutines.
type Params struct {
	Gravity r3.Vec

	// Continuous-time noise spectral densities, 3x3 each. They are divided
	// by Δt at integration time to obtain per-sample covariances.
	AccelerometerCovariance *mat.SymDense
	GyroscopeCovariance     *mat.SymDense
}

// NewParams validates and returns a new Params. Both covariances must be
// 3x3, symmetric and positive semi-definite.
func NewParams(gravity r3.Vec, accelCov, gyroCov mat.Symmetric) (*Params, error) {
	for name, m := range map[string]mat.Symmetric{"accelerometer": accelCov, "gyroscope": gyroCov} {
		if err := checkMatDims(m, Identity(3), name+" covariance", "I3", rowsAndcols); err != nil {
			return nil, err
		}
		if !IsPSD(m) {
			return nil, fmt.Errorf("gopreint: %s covariance is not positive semi-definite", name)
		}
	}
	p := &Params{Gravity: gravity}
	p.AccelerometerCovariance = mat.NewSymDense(3, nil)
	p.AccelerometerCovariance.CopySym(accelCov)
	p.GyroscopeCovariance = mat.NewSymDense(3, nil)
	p.GyroscopeCovariance.CopySym(gyroCov)
	return p, nil
}

// NewParamsNED returns Params for a navigation frame with the Z axis
// pointing down, with isotropic noise σa², σg² on each axis.
func NewParamsNED(g, σa2, σg2 float64) *Params {
	p, err := NewParams(r3.Vec{Z: g}, isotropic(σa2), isotropic(σg2))
	if err != nil {
		panic(err)
	}
	return p
}

// NewParamsENU returns Params for a navigation frame with the Z axis
// pointing up, with isotropic noise σa², σg² on each axis.
func NewParamsENU(g, σa2, σg2 float64) *Params {
	p, err := NewParams(r3.Vec{Z: -g}, isotropic(σa2), isotropic(σg2))
	if err != nil {
		panic(err)
	}
	return p
}

func isotropic(σ2 float64) *mat.SymDense {
	return mat.NewSymDense(3, []float64{σ2, 0, 0, 0, σ2, 0, 0, 0, σ2})
}

// String implements the Stringer interface.
func (p *Params) String() string {
	return fmt.Sprintf("Params{g=%+v\nΣa=%v\nΣg=%v}", p.Gravity,
		mat.Formatted(p.AccelerometerCovariance, mat.Prefix("   ")),
		mat.Formatted(p.GyroscopeCovariance, mat.Prefix("   ")))
}
