package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// optimizedKernel runs the batch operations through gonum's vectorized slice
// routines.
type optimizedKernel struct{}

func (optimizedKernel) Name() string { return Optimized }

func (optimizedKernel) Invariants(u, c []float64, k float64, alpha, beta []float64) {
	copy(alpha, c)
	floats.AddScaled(alpha, k, u)
	copy(beta, c)
	floats.AddScaled(beta, -k, u)
}

func (optimizedKernel) Recombine(alpha, beta []float64, k float64, u, c []float64) {
	floats.SubTo(u, alpha, beta)
	floats.Scale(1/(2*k), u)
	copy(c, alpha)
	floats.Add(c, beta)
	floats.Scale(0.5, c)
}

func (optimizedKernel) MaxWaveSpeed(u, c []float64) float64 {
	if len(u) == 0 {
		return 0
	}
	s := make([]float64, len(u))
	for i := range u {
		s[i] = math.Abs(u[i])
	}
	floats.Add(s, c)
	return floats.Max(s)
}

func (optimizedKernel) QuadraticDrag(u []float64, coeff float64, dst []float64) {
	s := make([]float64, len(u))
	for i := range u {
		s[i] = u[i] * math.Abs(u[i])
	}
	floats.AddScaled(dst, coeff, s)
}
