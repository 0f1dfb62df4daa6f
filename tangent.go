package gopreint

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vector9 is a tangent-space increment of the navigation state: the rotation,
// position and velocity blocks stacked in that order, all expressed relative
// to the start of the aggregation window.
type Vector9 [9]float64

// DR returns the rotation block θ.
func (v Vector9) DR() r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

// DP returns the position block.
func (v Vector9) DP() r3.Vec { return r3.Vec{X: v[3], Y: v[4], Z: v[5]} }

// DV returns the velocity block.
func (v Vector9) DV() r3.Vec { return r3.Vec{X: v[6], Y: v[7], Z: v[8]} }

// SetDR overwrites the rotation block.
func (v *Vector9) SetDR(w r3.Vec) { v[0], v[1], v[2] = w.X, w.Y, w.Z }

// SetDP overwrites the position block.
func (v *Vector9) SetDP(w r3.Vec) { v[3], v[4], v[5] = w.X, w.Y, w.Z }

// SetDV overwrites the velocity block.
func (v *Vector9) SetDV(w r3.Vec) { v[6], v[7], v[8] = w.X, w.Y, w.Z }

// Vector returns a copy of v as a mat.VecDense.
func (v Vector9) Vector() *mat.VecDense {
	data := make([]float64, 9)
	copy(data, v[:])
	return mat.NewVecDense(9, data)
}

func (v Vector9) String() string {
	return fmt.Sprintf("dR=%+v dP=%+v dV=%+v", v.DR(), v.DP(), v.DV())
}
