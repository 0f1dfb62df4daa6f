package gopreint

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Bias is a fixed accelerometer/gyroscope bias snapshot. It is immutable for
// the lifetime of one aggregation window; estimating it is the caller's job.
type Bias struct {
	Accelerometer r3.Vec
	Gyroscope     r3.Vec
}

// CorrectAccelerometer subtracts the accelerometer bias from a raw sample.
func (b Bias) CorrectAccelerometer(measured r3.Vec) r3.Vec {
	return r3.Sub(measured, b.Accelerometer)
}

// CorrectGyroscope subtracts the gyroscope bias from a raw sample.
func (b Bias) CorrectGyroscope(measured r3.Vec) r3.Vec {
	return r3.Sub(measured, b.Gyroscope)
}

// String implements the Stringer interface.
func (b Bias) String() string {
	return fmt.Sprintf("Bias{acc=%+v gyro=%+v}", b.Accelerometer, b.Gyroscope)
}
