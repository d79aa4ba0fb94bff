// Package kernel generates the convolution kernels used by the iWave
// height-field wave solver. A kernel is a lattice of weights derived from a
// truncated integral of a Gaussian-damped Bessel term; the solver applies it
// as a stencil, so the expensive series is evaluated once here and persisted.
package kernel

import "fmt"

// Params holds the quantisation parameters for the kernel series. The series
// approximates an integral over wavenumber q by sampling at qn = n*DeltaQ for
// n = 1..NMax, with a Gaussian damping term exp(-Sigma*qn^2).
type Params struct {
	// DeltaQ is the wavenumber step of the Riemann sum.
	DeltaQ float64
	// Sigma controls the Gaussian damping of high wavenumbers.
	Sigma float64
	// NMax is the number of series terms. Larger values converge toward the
	// analytic kernel at proportional cost.
	NMax int
}

// DefaultParams returns the parameters used by the reference generator.
func DefaultParams() Params {
	return Params{
		DeltaQ: 0.001,
		Sigma:  1.0,
		NMax:   10000,
	}
}

// Validate checks that the parameters describe a usable series. NMax < 1 is
// rejected here because it would make the normalisation constant zero and
// every weight a division by zero.
func (p Params) Validate() error {
	if p.DeltaQ <= 0 {
		return fmt.Errorf("delta_q must be positive, got %g", p.DeltaQ)
	}
	if p.Sigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %g", p.Sigma)
	}
	if p.NMax < 1 {
		return fmt.Errorf("n_max must be at least 1, got %d", p.NMax)
	}
	return nil
}
