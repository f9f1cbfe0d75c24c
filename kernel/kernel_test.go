package kernel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The optimized kernel must be indistinguishable from the reference one.
func TestKernelEquivalence(t *testing.T) {
	ref, err := Select(Reference)
	require.NoError(t, err)
	opt, err := Select(Optimized)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	const n = 257
	u := make([]float64, n)
	c := make([]float64, n)
	for i := range u {
		u[i] = 40 * (rng.Float64() - 0.5)
		c[i] = 330 + 20*rng.Float64()
	}
	k := 0.2

	aR, bR := make([]float64, n), make([]float64, n)
	aO, bO := make([]float64, n), make([]float64, n)
	ref.Invariants(u, c, k, aR, bR)
	opt.Invariants(u, c, k, aO, bO)
	for i := range aR {
		assert.InDelta(t, aR[i], aO[i], 1e-12)
		assert.InDelta(t, bR[i], bO[i], 1e-12)
	}

	uR, cR := make([]float64, n), make([]float64, n)
	uO, cO := make([]float64, n), make([]float64, n)
	ref.Recombine(aR, bR, k, uR, cR)
	opt.Recombine(aO, bO, k, uO, cO)
	for i := range uR {
		assert.InDelta(t, uR[i], uO[i], 1e-10)
		assert.InDelta(t, cR[i], cO[i], 1e-10)
		// Recombine inverts Invariants.
		assert.InDelta(t, u[i], uR[i], 1e-10)
		assert.InDelta(t, c[i], cR[i], 1e-10)
	}

	assert.InDelta(t, ref.MaxWaveSpeed(u, c), opt.MaxWaveSpeed(u, c), 1e-12)

	dR, dO := make([]float64, n), make([]float64, n)
	ref.QuadraticDrag(u, -0.0025, dR)
	opt.QuadraticDrag(u, -0.0025, dO)
	for i := range dR {
		assert.InDelta(t, dR[i], dO[i], 1e-14)
		assert.InDelta(t, -0.0025*u[i]*math.Abs(u[i]), dR[i], 1e-14)
	}
}

func TestSelect(t *testing.T) {
	k, err := Select("")
	require.NoError(t, err)
	assert.Equal(t, Reference, k.Name())
	_, err = Select("Vectorized")
	assert.Error(t, err)
}
