// Package kernel holds the inner numeric loops of the characteristic and
// friction math behind one interface, with a plain reference implementation
// and an optimized one. Both must produce identical results; the solver
// packages take whichever the caller selects.
package kernel

import "github.com/pkg/errors"

// Kernel is the batch-math surface the integrator and source models run on.
// Slices are gridpoint-indexed and all the same length; dst slices are
// written in full.
type Kernel interface {
	Name() string

	// Invariants writes the forward and backward Riemann invariants
	// alpha = c + k*u, beta = c - k*u, with k = (gamma-1)/2.
	Invariants(u, c []float64, k float64, alpha, beta []float64)

	// Recombine inverts Invariants: u = (alpha-beta)/(2k), c = (alpha+beta)/2.
	Recombine(alpha, beta []float64, k float64, u, c []float64)

	// MaxWaveSpeed returns max over gridpoints of |u| + c.
	MaxWaveSpeed(u, c []float64) float64

	// QuadraticDrag accumulates coeff * u|u| onto dst.
	QuadraticDrag(u []float64, coeff float64, dst []float64)
}

// Names of the built-in kernels.
const (
	Reference = "Reference"
	Optimized = "Optimized"
)

// Select returns the kernel registered under name.
func Select(name string) (Kernel, error) {
	switch name {
	case Reference, "":
		return referenceKernel{}, nil
	case Optimized:
		return optimizedKernel{}, nil
	}
	return nil, errors.Errorf("unknown kernel %q", name)
}
