package results

import (
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventworks/ductflow/moc"
	"github.com/ventworks/ductflow/network"
)

func testSim(t *testing.T, finalTime float64) *moc.Simulation {
	t.Helper()
	gas := network.AirAtRest
	seg := &network.Segment{
		ID: "duct", Length: 500, Area: 50, Perimeter: 28, FixedFactor: 0.02,
	}
	nw := &network.Network{Gas: gas, Segments: []*network.Segment{seg}}
	nw.SetBoundary(seg, network.BackEnd,
		&network.BoundaryCondition{Kind: network.ReservoirPressure, Value: gas.PRef + 100})
	nw.SetBoundary(seg, network.ForwardEnd,
		&network.BoundaryCondition{Kind: network.ReservoirPressure, Value: gas.PRef})
	logger := log.New()
	logger.SetOutput(io.Discard)
	s, err := moc.New(nw, moc.Config{
		Dt: 0.02, FinalTime: finalTime, MaxVelocity: 15,
		FrictionModel: network.FrictionFixed, Logger: logger,
	})
	require.NoError(t, err)
	return s
}

func TestRecorderCadence(t *testing.T) {
	s := testSim(t, 10)
	rec := NewRecorder(1.0)
	require.NoError(t, s.Run(rec.Observe))

	// Roughly one sample per interval, strictly increasing in time, each at
	// least an interval apart.
	assert.GreaterOrEqual(t, len(rec.Samples), 9)
	assert.LessOrEqual(t, len(rec.Samples), 11)
	for i := 1; i < len(rec.Samples); i++ {
		assert.GreaterOrEqual(t, rec.Samples[i].Time-rec.Samples[i-1].Time, 1.0-1e-9)
	}

	for _, smp := range rec.Samples {
		_, ok := smp.Segments["duct"]
		assert.True(t, ok)
	}

	// A snapshot taken now mirrors the live state exactly; the recorded
	// samples are older and have since evolved.
	snap := Snapshot(s)
	assert.InDelta(t, s.Time, snap.Time, 1e-12)
	f, ok := snap.Segments["duct"]
	require.True(t, ok)
	seg := s.Net.Segments[0]
	require.Equal(t, len(seg.Cells), len(f.U))
	for i, c := range seg.Cells {
		assert.InDelta(t, c.X, f.X[i], 1e-12)
		assert.InDelta(t, c.U, f.U[i], 1e-12)
		assert.InDelta(t, s.Gas.Density(c.C), f.Rho[i], 1e-12)
		assert.InDelta(t, s.Gas.Pressure(c.C), f.P[i], 1e-9)
	}
}

func TestSummarize(t *testing.T) {
	s := testSim(t, 30)
	require.NoError(t, s.Run(nil))
	sm := Summarize(s)
	assert.Equal(t, s.StepCount, sm.Steps)
	assert.InDelta(t, 30.0, sm.FinalTime, 0.05)
	assert.Greater(t, sm.UMean, 0.0)
	assert.GreaterOrEqual(t, sm.UMax, sm.UMean)
	assert.LessOrEqual(t, sm.UMin, sm.UMean)
	assert.Zero(t, sm.Warnings)
}
