package moc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventworks/ductflow/network"
)

// fanDuct builds reservoir -> segment a -> fan node -> segment b -> reservoir
// with the given forward curve.
func fanDuct(t *testing.T, curve []network.CurvePoint, speed float64) (*Simulation, *network.Fan) {
	t.Helper()
	gas := network.AirAtRest
	mk := func(id string) *network.Segment {
		return &network.Segment{
			ID: id, Length: 200, Area: 50, Perimeter: 28, FixedFactor: 0.02,
		}
	}
	a, b := mk("a"), mk("b")
	node := &network.Node{ID: "fan-node"}
	nw := &network.Network{Gas: gas, Segments: []*network.Segment{a, b}, Nodes: []*network.Node{node}}
	nw.Attach(node, a, network.ForwardEnd, 0, 0)
	nw.Attach(node, b, network.BackEnd, 0, 0)
	ambient := func() *network.BoundaryCondition {
		return &network.BoundaryCondition{Kind: network.ReservoirPressure, Value: gas.PRef}
	}
	nw.SetBoundary(a, network.BackEnd, ambient())
	nw.SetBoundary(b, network.ForwardEnd, ambient())
	ch, err := network.NewCharacteristic(curve)
	require.NoError(t, err)
	fan := &network.Fan{
		ID: "f1", Node: node, Forward: ch, Diameter: 2,
		Speed: network.ConstantSpeed(speed),
	}
	nw.Fans = []*network.Fan{fan}
	s, err := New(nw, Config{
		Dt: 0.02, FinalTime: 60, MaxVelocity: 15,
		FrictionModel: network.FrictionFixed, Logger: quietLogger(),
	})
	require.NoError(t, err)
	return s, fan
}

// Against two 200 m ducts this curve settles in its mid range: the duty
// point converges, stays inside the defined curve, and drives the flow in
// the fan forward direction through both segments.
func TestFanDutyPoint(t *testing.T) {
	s, fan := fanDuct(t, []network.CurvePoint{{Q: 0, DP: 400}, {Q: 300, DP: 250}, {Q: 600, DP: 0}}, 1)
	require.NoError(t, s.Run(nil))

	duty := fan.Duty
	assert.True(t, duty.Converged)
	assert.False(t, duty.Extrapolated)
	assert.Greater(t, duty.Q, 300.0)
	assert.Less(t, duty.Q, 600.0)
	rise, _ := fan.RiseAt(duty.Q, 1)
	assert.InDelta(t, rise, duty.DP, 1e-9)

	// Positive duty flow leaves segment a's forward end and enters b's back
	// end; both segment velocities are positive and consistent with Q.
	a, b := s.Net.Segments[0], s.Net.Segments[1]
	assert.InDelta(t, duty.Q/a.Area, a.Cells[len(a.Cells)-1].U, 1e-6)
	assert.InDelta(t, duty.Q/b.Area, b.Cells[0].U, 1e-6)
	assert.Zero(t, s.Warnings.Count())
}

// A curve defined only over a sliver of flow forces the duty point past its
// high end; the solved point is flagged, not refused.
func TestFanDutyPointExtrapolated(t *testing.T) {
	s, fan := fanDuct(t, []network.CurvePoint{{Q: 0, DP: 50}, {Q: 10, DP: 45}}, 1)
	require.NoError(t, s.Run(nil))

	assert.True(t, fan.Duty.Converged)
	assert.True(t, fan.Duty.Extrapolated)
	_, hi := fan.Forward.QRange()
	assert.Greater(t, fan.Duty.Q, hi)
}

// A cliff-shaped curve has no slope the secant iteration can work with near
// the balance point. The solver must hunt within bounds, keep the run alive
// and report the non-convergence each step.
func TestFanStallHuntsAndWarns(t *testing.T) {
	s, fan := fanDuct(t, []network.CurvePoint{
		{Q: 0, DP: 1000}, {Q: 1e-6, DP: -1000}, {Q: 600, DP: -1100},
	}, 1)
	require.NoError(t, s.Run(nil))

	assert.False(t, fan.Duty.Converged)
	var fanWarnings int
	for _, w := range s.Warnings.Warnings {
		if w.Component == "fan" {
			fanWarnings++
			assert.Equal(t, fan.ID, w.ID)
		}
	}
	assert.Greater(t, fanWarnings, 0)
	// Hunting stays physical: bounded flow, positive celerities everywhere.
	for _, seg := range s.Net.Segments {
		for i, c := range seg.Cells {
			assert.Greater(t, c.C, 0.0, "segment %s cell %d", seg.ID, i)
			assert.Less(t, c.U, 50.0)
			assert.Greater(t, c.U, -50.0)
		}
	}
}

// A stopped fan neither drives nor blocks: with equal reservoirs the network
// stays at rest.
func TestStoppedFanIsTransparent(t *testing.T) {
	s, fan := fanDuct(t, []network.CurvePoint{{Q: 0, DP: 400}, {Q: 600, DP: 0}}, 0)
	require.NoError(t, s.Run(nil))
	assert.InDelta(t, 0.0, fan.Duty.Q, 1e-6)
	for _, seg := range s.Net.Segments {
		for _, c := range seg.Cells {
			assert.InDelta(t, 0.0, c.U, 1e-6)
		}
	}
}
