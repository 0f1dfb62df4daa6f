package gopreint

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Aggregator folds high-rate IMU samples into a single tangent-space summary
// of one aggregation window: the running 9-vector increment, its covariance,
// the elapsed time and the sample count. One Aggregator belongs to exactly
// one window between two keyframes and is not reused. It is not safe for
// concurrent mutation; the Params and Bias snapshots it holds are read-only
// and may be shared freely.
type Aggregator struct {
	params *Params
	bias   Bias

	zeta    Vector9
	cov     *mat.SymDense // 9x9 covariance of zeta
	elapsed float64
	count   int

	// Partials of zeta with respect to the accelerometer and gyroscope
	// bias, accumulated alongside the mean. Consumed by Predict.
	dζdba *mat.Dense // 9x3
	dζdbω *mat.Dense // 9x3

	// Scratch Jacobians reused across samples to keep the hot path free
	// of repeated allocation.
	jacA  *mat.Dense // 9x9
	jacBa *mat.Dense // 9x3
	jacBw *mat.Dense // 9x3
}

// NewAggregator returns an empty aggregation window using the provided
// shared parameters and the bias snapshot to subtract from every sample.
func NewAggregator(p *Params, bias Bias) (*Aggregator, error) {
	if p == nil {
		return nil, fmt.Errorf("gopreint: params must not be nil")
	}
	return &Aggregator{
		params: p,
		bias:   bias,
		cov:    mat.NewSymDense(9, nil),
		dζdba:  mat.NewDense(9, 3, nil),
		dζdbω:  mat.NewDense(9, 3, nil),
		jacA:   mat.NewDense(9, 9, nil),
		jacBa:  mat.NewDense(9, 3, nil),
		jacBw:  mat.NewDense(9, 3, nil),
	}, nil
}

// IntegrateMeasurement folds one raw accelerometer/gyroscope sample pair
// into the window. Δt must be strictly positive; on any error the window is
// left exactly as it was.
func (ag *Aggregator) IntegrateMeasurement(measuredAcc, measuredOmega r3.Vec, Δt float64) error {
	if Δt <= 0 {
		return fmt.Errorf("gopreint: time step must be positive, got Δt=%v", Δt)
	}

	acc := ag.bias.CorrectAccelerometer(measuredAcc)
	ω := ag.bias.CorrectGyroscope(measuredOmega)

	// Exact mean propagation, with all three Jacobians.
	A, Ba, Bw := ag.jacA, ag.jacBa, ag.jacBw
	ζ, err := UpdateEstimate(ag.zeta, acc, ω, Δt, A, Ba, Bw)
	if err != nil {
		return err
	}

	// cov ← A·cov·Aᵗ + Bw·(Σg/Δt)·Bwᵗ + Ba·(Σa/Δt)·Baᵗ
	// The continuous-time spectral densities divided by Δt are the
	// per-sample discrete covariances.
	var AP, sum mat.Dense
	AP.Mul(A, ag.cov)
	sum.Mul(&AP, A.T())
	var Σg, Σa mat.Dense
	Σg.Scale(1/Δt, ag.params.GyroscopeCovariance)
	Σa.Scale(1/Δt, ag.params.AccelerometerCovariance)
	var BwΣ, BaΣ, gTerm, aTerm mat.Dense
	BwΣ.Mul(Bw, &Σg)
	gTerm.Mul(&BwΣ, Bw.T())
	BaΣ.Mul(Ba, &Σa)
	aTerm.Mul(&BaΣ, Ba.T())
	sum.Add(&sum, &gTerm)
	sum.Add(&sum, &aTerm)
	cov, err := AsSymDense(&sum)
	if err != nil {
		return err
	}

	// Fold the bias sensitivities forward with the same Jacobians. The
	// corrected measurements depend on the bias with derivative -I.
	var dba, dbω mat.Dense
	dba.Mul(A, ag.dζdba)
	dba.Sub(&dba, Ba)
	dbω.Mul(A, ag.dζdbω)
	dbω.Sub(&dbω, Bw)

	// Commit only once every term is computed.
	ag.zeta = ζ
	ag.cov = cov
	ag.dζdba.CloneFrom(&dba)
	ag.dζdbω.CloneFrom(&dbω)
	ag.count++
	ag.elapsed += Δt
	return nil
}

// Zeta returns the aggregated tangent-space increment.
func (ag *Aggregator) Zeta() Vector9 { return ag.zeta }

// Theta returns the rotation block of the aggregated increment.
func (ag *Aggregator) Theta() r3.Vec { return ag.zeta.DR() }

// Covariance returns the raw 9x9 covariance of the aggregated increment,
// expressed in the tangent space at the start of the window. The covariance
// in the frame induced by the retract operation is available via NoiseModel.
func (ag *Aggregator) Covariance() mat.Symmetric {
	out := mat.NewSymDense(9, nil)
	out.CopySym(ag.cov)
	return out
}

// DeltaT returns the total integrated time of the window.
func (ag *Aggregator) DeltaT() float64 { return ag.elapsed }

// Count returns the number of integrated samples.
func (ag *Aggregator) Count() int { return ag.count }

// Bias returns the bias snapshot subtracted from every sample.
func (ag *Aggregator) Bias() Bias { return ag.bias }

// String implements the Stringer interface.
func (ag *Aggregator) String() string {
	return fmt.Sprintf("Aggregator{k=%d Δt=%.6f\nζ=%s\nP=%v}", ag.count, ag.elapsed, ag.zeta,
		mat.Formatted(ag.cov, mat.Prefix("  ")))
}
