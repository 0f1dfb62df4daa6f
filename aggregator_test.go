package gopreint

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func testParams(t *testing.T, gravity r3.Vec, σa2, σg2 float64) *Params {
	t.Helper()
	p, err := NewParams(gravity, isotropic(σa2), isotropic(σg2))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewAggregatorInvariants(t *testing.T) {
	p := testParams(t, r3.Vec{Z: -StandardGravity}, 1e-4, 1e-5)
	ag, err := NewAggregator(p, Bias{})
	if err != nil {
		t.Fatal(err)
	}
	vec9Equal(t, ag.Zeta(), Vector9{}, 0, "fresh window has nonzero increment")
	if ag.DeltaT() != 0 || ag.Count() != 0 {
		t.Fatalf("fresh window has elapsed=%v count=%d", ag.DeltaT(), ag.Count())
	}
	cov := ag.Covariance()
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			if cov.At(i, j) != 0 {
				t.Fatalf("fresh window covariance (%d,%d) != 0", i, j)
			}
		}
	}

	if _, err = NewAggregator(nil, Bias{}); err == nil {
		t.Fatal("nil params accepted")
	}
}

func TestIntegrateRejectsBadTimeStepWithoutMutation(t *testing.T) {
	p := testParams(t, r3.Vec{Z: -StandardGravity}, 1e-4, 1e-5)
	ag, _ := NewAggregator(p, Bias{})
	if err := ag.IntegrateMeasurement(r3.Vec{Z: 1}, r3.Vec{X: 0.1}, 0.01); err != nil {
		t.Fatal(err)
	}
	before := ag.Zeta()
	covBefore := ag.Covariance()

	for _, Δt := range []float64{0, -1e-3} {
		if err := ag.IntegrateMeasurement(r3.Vec{Z: 1}, r3.Vec{X: 0.1}, Δt); err == nil {
			t.Fatalf("Δt=%v accepted", Δt)
		}
	}

	vec9Equal(t, ag.Zeta(), before, 0, "rejected sample mutated the increment")
	if !mat.Equal(covBefore, ag.Covariance()) {
		t.Fatal("rejected sample mutated the covariance")
	}
	if ag.Count() != 1 || ag.DeltaT() != 0.01 {
		t.Fatalf("rejected sample advanced the bookkeeping: k=%d Δt=%v", ag.Count(), ag.DeltaT())
	}
}

// Integrating a sample exactly equal to the bias must leave the increment
// untouched and grow the covariance by the discretized noise terms only.
func TestIntegrateBiasOnlySample(t *testing.T) {
	σa2, σg2 := 1e-4, 1e-5
	Δt := 0.01
	p := testParams(t, r3.Vec{Z: -StandardGravity}, σa2, σg2)
	bias := Bias{Accelerometer: r3.Vec{X: 0.1, Y: -0.2, Z: 0.05}, Gyroscope: r3.Vec{X: -0.01, Y: 0.02, Z: 0.003}}
	ag, _ := NewAggregator(p, bias)

	if err := ag.IntegrateMeasurement(bias.Accelerometer, bias.Gyroscope, Δt); err != nil {
		t.Fatal(err)
	}
	vec9Equal(t, ag.Zeta(), Vector9{}, 0, "bias-only sample moved the increment")

	cov := ag.Covariance()
	// With R = I the discretized noise terms have a closed form.
	checks := []struct {
		i, j int
		want float64
	}{
		{0, 0, σg2 * Δt},
		{3, 3, 0.25 * σa2 * Δt * Δt * Δt},
		{6, 6, σa2 * Δt},
		{3, 6, 0.5 * σa2 * Δt * Δt},
	}
	for _, c := range checks {
		if math.Abs(cov.At(c.i, c.j)-c.want) > 1e-15 {
			t.Fatalf("cov(%d,%d) = %g, want %g", c.i, c.j, cov.At(c.i, c.j), c.want)
		}
	}
	if ag.Count() != 1 || ag.DeltaT() != Δt {
		t.Fatalf("bookkeeping: k=%d Δt=%v", ag.Count(), ag.DeltaT())
	}
}

// Spec of the textbook scenario: one second of constant upward specific
// force with no rotation.
func TestIntegrateConstantAcceleration(t *testing.T) {
	p := testParams(t, r3.Vec{Z: -StandardGravity}, 1e-4, 1e-5)
	ag, _ := NewAggregator(p, Bias{})
	for k := 0; k < 100; k++ {
		if err := ag.IntegrateMeasurement(r3.Vec{Z: 9.81}, r3.Vec{}, 0.01); err != nil {
			t.Fatal(err)
		}
	}
	ζ := ag.Zeta()
	var want Vector9
	want.SetDP(r3.Vec{Z: 4.905})
	want.SetDV(r3.Vec{Z: 9.81})
	vec9Equal(t, ζ, want, 1e-9, "constant-acceleration window")
	if math.Abs(ag.DeltaT()-1.0) > 1e-12 {
		t.Fatalf("elapsed = %v, want 1.0", ag.DeltaT())
	}
	if ag.Count() != 100 {
		t.Fatalf("count = %d, want 100", ag.Count())
	}
}

// The covariance must stay symmetric positive semi-definite through any
// valid sample sequence, rotation included.
func TestCovarianceStaysPSD(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	p := testParams(t, r3.Vec{Z: -StandardGravity}, 1e-3, 1e-4)
	ag, _ := NewAggregator(p, Bias{})
	for k := 0; k < 200; k++ {
		acc := randVec(rng, 8)
		ω := randVec(rng, 1.5)
		Δt := 0.002 + 0.018*rng.Float64()
		if err := ag.IntegrateMeasurement(acc, ω, Δt); err != nil {
			t.Fatal(err)
		}
		cov, err := AsSymDense(ag.Covariance())
		if err != nil {
			t.Fatalf("step %d: covariance not symmetric: %s", k, err)
		}
		if !IsPSD(cov) {
			t.Fatalf("step %d: covariance not PSD", k)
		}
	}
}

func TestIntegrateDegenerateRotationSurfaces(t *testing.T) {
	p := testParams(t, r3.Vec{Z: -StandardGravity}, 1e-4, 1e-5)
	ag, _ := NewAggregator(p, Bias{})
	// Drive the rotation increment towards 2π.
	var err error
	for k := 0; k < 1200 && err == nil; k++ {
		err = ag.IntegrateMeasurement(r3.Vec{}, r3.Vec{Z: 2 * math.Pi}, 0.001)
	}
	if err == nil {
		t.Fatal("expected a degeneracy error approaching ‖θ‖=2π")
	}
}
