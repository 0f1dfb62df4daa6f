package gopreint

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distmv"
)

// IMUSampler draws raw IMU samples around a true specific force and angular
// rate, with additive bias and white noise matching the Params spectral
// densities discretized at a fixed sample interval. It exists for
// consistency testing and examples; the aggregation core never samples.
type IMUSampler struct {
	bias Bias
	Δt   float64
	acc  *distmv.Normal
	gyro *distmv.Normal
}

// NewIMUSampler creates a sampler for the given parameters, bias and sample
// interval, seeded deterministically. The Params covariances must be
// positive definite to be sampled from.
func NewIMUSampler(p *Params, bias Bias, Δt float64, seed uint64) (*IMUSampler, error) {
	if Δt <= 0 {
		return nil, fmt.Errorf("gopreint: sample interval must be positive, got Δt=%v", Δt)
	}
	src := rand.NewPCG(seed, seed)
	var scaled mat.Dense

	scaled.Scale(1/Δt, p.AccelerometerCovariance)
	aCov, err := AsSymDense(&scaled)
	if err != nil {
		return nil, err
	}
	acc, ok := distmv.NewNormal(make([]float64, 3), aCov, src)
	if !ok {
		return nil, fmt.Errorf("gopreint: accelerometer covariance is not positive definite")
	}

	scaled.Scale(1/Δt, p.GyroscopeCovariance)
	gCov, err := AsSymDense(&scaled)
	if err != nil {
		return nil, err
	}
	gyro, ok := distmv.NewNormal(make([]float64, 3), gCov, src)
	if !ok {
		return nil, fmt.Errorf("gopreint: gyroscope covariance is not positive definite")
	}

	return &IMUSampler{bias: bias, Δt: Δt, acc: acc, gyro: gyro}, nil
}

// Sample returns one raw measurement pair: truth plus bias plus white noise.
func (s *IMUSampler) Sample(trueAcc, trueOmega r3.Vec) (measuredAcc, measuredOmega r3.Vec) {
	na := s.acc.Rand(nil)
	ng := s.gyro.Rand(nil)
	measuredAcc = r3.Add(r3.Add(trueAcc, s.bias.Accelerometer), r3.Vec{X: na[0], Y: na[1], Z: na[2]})
	measuredOmega = r3.Add(r3.Add(trueOmega, s.bias.Gyroscope), r3.Vec{X: ng[0], Y: ng[1], Z: ng[2]})
	return measuredAcc, measuredOmega
}

// DeltaT returns the sample interval the noise was discretized at.
func (s *IMUSampler) DeltaT() float64 { return s.Δt }
