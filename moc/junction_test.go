package moc

import (
	"fmt"
	"io"
	"math"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventworks/ductflow/network"
)

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

// branchSpec pins the physical identity of one branch: its area, its
// into-junction loss pair and the velocity encoded into its arriving
// characteristic. The identity must survive any relabeling or orientation
// flip of the network description.
type branchSpec struct {
	area, zin, zout, w float64
}

// buildStarSim assembles a star of len(order) segments around one node.
// Branch j of the specs is appended in the position given by order, attached
// at the given segment end; the far ends are ambient reservoirs. The
// returned K values line up with the node's branch order.
func buildStarSim(t *testing.T, specs []branchSpec, orients []network.SegmentEnd, order []int,
	aero network.AeroType, useAngled bool) (*Simulation, *network.Node, []float64) {
	t.Helper()
	gas := network.AirAtRest
	node := &network.Node{ID: "J", Aero: aero, UseAngledLosses: useAngled}
	nw := &network.Network{Gas: gas, Nodes: []*network.Node{node}}
	for _, j := range order {
		sp := specs[j]
		seg := &network.Segment{
			ID: fmt.Sprintf("s%d", j), Length: 200, Area: sp.area,
			Perimeter: 4 * math.Sqrt(sp.area), FixedFactor: 0.02,
		}
		nw.Segments = append(nw.Segments, seg)
		end := orients[j]
		var zb, zf float64
		if end == network.ForwardEnd {
			zf, zb = sp.zin, sp.zout
		} else {
			zb, zf = sp.zin, sp.zout
		}
		b := nw.Attach(node, seg, end, zb, zf)
		b.Angle = 0.3 * float64(j)
		b.AspectRatio = 1 + 0.1*float64(j)
		other := network.BackEnd
		if end == network.BackEnd {
			other = network.ForwardEnd
		}
		nw.SetBoundary(seg, other,
			&network.BoundaryCondition{Kind: network.ReservoirPressure, Value: gas.PRef})
	}
	sim, err := New(nw, Config{
		Dt: 0.02, FinalTime: 1, MaxVelocity: 20,
		FrictionModel: network.FrictionFixed, Logger: quietLogger(),
	})
	require.NoError(t, err)
	k := gas.InvariantCoeff()
	c0 := gas.SoundSpeed()
	K := make([]float64, len(order))
	for idx, j := range order {
		K[idx] = c0 + k*specs[j].w
	}
	return sim, node, K
}

func allForward(n int) []network.SegmentEnd {
	return make([]network.SegmentEnd, n)
}

func identity(n int) []int {
	o := make([]int, n)
	for i := range o {
		o[i] = i
	}
	return o
}

func specsFor(ways int, signs uint) []branchSpec {
	specs := make([]branchSpec, ways)
	for j := 0; j < ways; j++ {
		w := 1.5 * float64(j+1)
		if signs&(1<<uint(j)) != 0 {
			w = -w
		}
		specs[j] = branchSpec{
			area: 10 + 2*float64(j),
			zin:  0.2 + 0.1*float64(j),
			zout: 0.4 + 0.05*float64(j),
			w:    w,
		}
	}
	return specs
}

// Every branch count from 2 to 6 must resolve to the same junction state no
// matter how the branches are labeled or which way round their segments run,
// for every combination of arriving flow directions. Historically the
// easiest bug to write here is reading another branch's loss coefficient.
func TestJunctionOrientationIndependence(t *testing.T) {
	allForwardOrients := allForward(6)
	for ways := 2; ways <= 6; ways++ {
		strat := strategyFor(ways)
		require.NotNil(t, strat)
		assert.Equal(t, ways, strat.Ways())
		for signs := uint(0); signs < 1<<uint(ways); signs++ {
			specs := specsFor(ways, signs)
			base, baseNode, baseK := buildStarSim(t, specs, allForwardOrients[:ways], identity(ways),
				network.AeroNWay, false)
			baseSol := strat.Solve(base, baseNode, baseK)

			// Reversed labeling, mixed orientations.
			order := make([]int, ways)
			orients := make([]network.SegmentEnd, ways)
			for j := 0; j < ways; j++ {
				order[j] = ways - 1 - j
				if j%2 == 1 {
					orients[j] = network.BackEnd
				}
			}
			perm, permNode, permK := buildStarSim(t, specs, orients, order,
				network.AeroNWay, false)
			permSol := strat.Solve(perm, permNode, permK)

			assert.InDelta(t, baseSol.PJ, permSol.PJ, 1e-3,
				"ways=%d signs=%b", ways, signs)
			for idx, j := range order {
				assert.InDelta(t, baseSol.W[j], permSol.W[idx], 1e-6,
					"ways=%d signs=%b branch=%d", ways, signs, j)
				assert.InDelta(t, baseSol.C[j], permSol.C[idx], 1e-6,
					"ways=%d signs=%b branch=%d", ways, signs, j)
			}

			// Mass conservation and a small full-system residual, both
			// solutions.
			checkJunction(t, base, baseNode, baseK, baseSol)
			checkJunction(t, perm, permNode, permK, permSol)
		}
	}
}

func checkJunction(t *testing.T, s *Simulation, n *network.Node, K []float64, sol JunctionSolution) {
	t.Helper()
	g := s.Gas
	var m float64
	for j, b := range n.Branches {
		m += g.Density(sol.C[j]) * b.Area() * sol.W[j]
	}
	assert.InDelta(t, 0.0, m, 1e-5, "node %s signed mass flow", n.ID)
	assert.Less(t, s.ResidualNorm(n, K, sol), 1e-5)
	assert.True(t, sol.Converged)
}

// A pressurized trunk feeding a tee must split its flow over the two exits
// with the signed branch mass flows balancing every step of a real run.
func TestTeeConservesMass(t *testing.T) {
	gas := network.AirAtRest
	mk := func(id string) *network.Segment {
		return &network.Segment{
			ID: id, Length: 300, Area: 50, Perimeter: 28, FixedFactor: 0.02,
		}
	}
	trunk, exitB, exitC := mk("trunk"), mk("b"), mk("c")
	node := &network.Node{ID: "tee", Aero: network.AeroNWay}
	nw := &network.Network{
		Gas:      gas,
		Segments: []*network.Segment{trunk, exitB, exitC},
		Nodes:    []*network.Node{node},
	}
	nw.Attach(node, trunk, network.ForwardEnd, 0.3, 0.3)
	nw.Attach(node, exitB, network.BackEnd, 0.5, 0.5)
	nw.Attach(node, exitC, network.BackEnd, 0.5, 0.5)
	nw.SetBoundary(trunk, network.BackEnd,
		&network.BoundaryCondition{Kind: network.ReservoirPressure, Value: gas.PRef + 200})
	nw.SetBoundary(exitB, network.ForwardEnd,
		&network.BoundaryCondition{Kind: network.ReservoirPressure, Value: gas.PRef})
	nw.SetBoundary(exitC, network.ForwardEnd,
		&network.BoundaryCondition{Kind: network.ReservoirPressure, Value: gas.PRef})
	s, err := New(nw, Config{
		Dt: 0.02, FinalTime: 30, MaxVelocity: 15,
		FrictionModel: network.FrictionFixed, Logger: quietLogger(),
	})
	require.NoError(t, err)

	err = s.Run(func(s *Simulation) {
		flows := s.JunctionFlows["tee"]
		require.Len(t, flows, 3)
		var m float64
		for _, f := range flows {
			m += f.MassFlow
		}
		assert.InDelta(t, 0.0, m, 1e-3, "t=%g", s.Time)
	})
	require.NoError(t, err)

	flows := s.JunctionFlows["tee"]
	assert.Greater(t, flows[0].MassFlow, 1.0, "trunk feeds the tee")
	assert.Less(t, flows[1].MassFlow, -0.5)
	assert.Less(t, flows[2].MassFlow, -0.5)
	// Symmetric exits split evenly.
	assert.InEpsilon(t, flows[1].MassFlow, flows[2].MassFlow, 1e-6)
	assert.Zero(t, s.Warnings.Count())
}

// An Angled aero type without the explicit flag keeps the symmetric loss
// model; with the flag the empirical correlation shifts the balance. The
// fallback is visible in the solver state, not silent.
func TestAngledJunctionFallback(t *testing.T) {
	specs := specsFor(3, 0b001)
	sym, symNode, symK := buildStarSim(t, specs, allForward(3), identity(3),
		network.AeroNWay, false)
	symSol := strategyFor(3).Solve(sym, symNode, symK)

	fb, fbNode, fbK := buildStarSim(t, specs, allForward(3), identity(3),
		network.AeroAngled, false)
	fbSol := strategyFor(3).Solve(fb, fbNode, fbK)

	ang, angNode, angK := buildStarSim(t, specs, allForward(3), identity(3),
		network.AeroAngled, true)
	angSol := strategyFor(3).Solve(ang, angNode, angK)

	// Fallback == symmetric, and the fallback got flagged.
	assert.InDelta(t, symSol.PJ, fbSol.PJ, 1e-6)
	for j := range symSol.W {
		assert.InDelta(t, symSol.W[j], fbSol.W[j], 1e-8)
	}
	assert.True(t, fb.angledFallbackSeen[fbNode.ID])
	assert.False(t, sym.angledFallbackSeen[symNode.ID])

	// The armed correlation changes the answer (branches carry nonzero
	// angles).
	var diff float64
	for j := range symSol.W {
		diff += math.Abs(symSol.W[j] - angSol.W[j])
	}
	assert.Greater(t, diff, 1e-4)
	checkJunction(t, ang, angNode, angK, angSol)
}
