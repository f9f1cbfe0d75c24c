package kernel

import "math"

// referenceKernel is the plain-loop implementation, kept obvious so it can
// serve as the truth the optimized kernel is checked against.
type referenceKernel struct{}

func (referenceKernel) Name() string { return Reference }

func (referenceKernel) Invariants(u, c []float64, k float64, alpha, beta []float64) {
	for i := range u {
		ku := k * u[i]
		alpha[i] = c[i] + ku
		beta[i] = c[i] - ku
	}
}

func (referenceKernel) Recombine(alpha, beta []float64, k float64, u, c []float64) {
	for i := range alpha {
		u[i] = (alpha[i] - beta[i]) / (2 * k)
		c[i] = 0.5 * (alpha[i] + beta[i])
	}
}

func (referenceKernel) MaxWaveSpeed(u, c []float64) (lm float64) {
	for i := range u {
		if s := math.Abs(u[i]) + c[i]; s > lm {
			lm = s
		}
	}
	return
}

func (referenceKernel) QuadraticDrag(u []float64, coeff float64, dst []float64) {
	for i := range u {
		dst[i] += coeff * u[i] * math.Abs(u[i])
	}
}
