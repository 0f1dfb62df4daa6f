package gopreint

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Noise is the consumer-facing uncertainty of a preintegrated window. It is
// a small closed set of variants rather than a hierarchy: a covariance-form
// Gaussian and its information-form dual.
type Noise interface {
	Covariance() mat.Symmetric  // Returns the covariance matrix P
	Information() mat.Symmetric // Returns the information matrix P⁻¹
	String() string             // Stringer interface implementation
}

// Gaussian is a covariance-form noise model.
type Gaussian struct {
	cov *mat.SymDense
}

// NewGaussian creates a Gaussian noise model from the provided covariance.
// The matrix must be symmetric positive semi-definite.
func NewGaussian(cov mat.Symmetric) (*Gaussian, error) {
	if !IsPSD(cov) {
		return nil, fmt.Errorf("gopreint: covariance is not positive semi-definite")
	}
	n, _ := cov.Dims()
	c := mat.NewSymDense(n, nil)
	c.CopySym(cov)
	return &Gaussian{cov: c}, nil
}

// Covariance implements the Noise interface.
func (g *Gaussian) Covariance() mat.Symmetric {
	return g.cov
}

// Information implements the Noise interface. It panics if the covariance is
// singular; a window with too few samples carries no information on some
// directions and has no information form.
func (g *Gaussian) Information() mat.Symmetric {
	var chol mat.Cholesky
	if ok := chol.Factorize(g.cov); !ok {
		panic(fmt.Errorf("gopreint: covariance is singular, information form undefined"))
	}
	info := mat.NewSymDense(g.cov.SymmetricDim(), nil)
	if err := chol.InverseTo(info); err != nil {
		panic(fmt.Errorf("gopreint: could not invert covariance: %s", err))
	}
	return info
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nP=%v}", mat.Formatted(g.cov, mat.Prefix("  ")))
}

// InformationForm is an information-form noise model, the dual of Gaussian.
type InformationForm struct {
	info *mat.SymDense
}

// NewInformationForm creates an information-form noise model from the
// provided information matrix, which must be symmetric positive definite.
func NewInformationForm(info mat.Symmetric) (*InformationForm, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(info); !ok {
		return nil, fmt.Errorf("gopreint: information matrix is not positive definite")
	}
	n, _ := info.Dims()
	c := mat.NewSymDense(n, nil)
	c.CopySym(info)
	return &InformationForm{info: c}, nil
}

// Covariance implements the Noise interface.
func (n *InformationForm) Covariance() mat.Symmetric {
	var chol mat.Cholesky
	if ok := chol.Factorize(n.info); !ok {
		panic(fmt.Errorf("gopreint: information matrix is singular"))
	}
	cov := mat.NewSymDense(n.info.SymmetricDim(), nil)
	if err := chol.InverseTo(cov); err != nil {
		panic(fmt.Errorf("gopreint: could not invert information matrix: %s", err))
	}
	return cov
}

// Information implements the Noise interface.
func (n *InformationForm) Information() mat.Symmetric {
	return n.info
}

// String implements the Stringer interface.
func (n *InformationForm) String() string {
	return fmt.Sprintf("InformationForm{\nΛ=%v}", mat.Formatted(n.info, mat.Prefix("  ")))
}
