package moc

import (
	"fmt"
	"math"

	"github.com/ventworks/ductflow/network"
)

// portalMaxIter bounds the reservoir fixed-point iteration. With large
// portal loss coefficients the iteration is known not to settle within this
// budget; the solver then keeps whatever value it last held and files a
// warning. Use Simulation.BoundaryTrace to watch the history.
const portalMaxIter = 20

const portalTol = 1e-9

// resolveBoundaries solves every portal gridpoint for the new step.
func (s *Simulation) resolveBoundaries() error {
	for _, seg := range s.Net.Segments {
		for _, end := range []network.SegmentEnd{network.BackEnd, network.ForwardEnd} {
			bc := seg.Bounds[end]
			if bc == nil {
				continue
			}
			K := s.endInvariant(seg, end)
			switch bc.Kind {
			case network.ReservoirPressure:
				w, c, res := s.solveReservoir(seg, end, bc, K)
				if !res.Converged {
					s.Warnings.Add(Warning{
						Component:  "boundary",
						ID:         fmt.Sprintf("%s/%s", seg.ID, end),
						Time:       s.Time,
						Iterations: res.Iterations,
						Detail:     res.Diagnostic,
					})
				}
				s.setEndState(seg, end, w, c)
			case network.FixedVelocity:
				// Target is into the duct; the characteristic frame is out.
				w := -bc.Target(s.Time)
				c := K - s.Gas.InvariantCoeff()*w
				s.setEndState(seg, end, w, c)
			case network.FixedVolumeFlow:
				w := -bc.Target(s.Time) / seg.Area
				c := K - s.Gas.InvariantCoeff()*w
				s.setEndState(seg, end, w, c)
			}
		}
	}
	return nil
}

// solveReservoir iterates the portal celerity/velocity pair against an
// infinite reservoir at rest. The entry/exit loss is quadratic in velocity
// and flips between coefficients with the flow direction, so the pair is
// found by fixed point rather than in closed form: each pass takes the
// velocity from the interior characteristic and the celerity from the
// reservoir energy balance.
func (s *Simulation) solveReservoir(seg *network.Segment, end network.SegmentEnd,
	bc *network.BoundaryCondition, K float64) (w, c float64, res IterResult) {
	var (
		k    = s.Gas.InvariantCoeff()
		cRes = s.Gas.CelerityFromPressure(bc.Value)
		i    = seg.End(end)
	)
	c = s.scratch[seg].cOld[i] // warm start from the previous step
	if c <= 0 {
		c = cRes
	}
	for it := 0; it < portalMaxIter; it++ {
		w = (K - c) / k
		var c2 float64
		if w <= 0 {
			// Inflow from the reservoir: stagnation energy less the
			// accelerated dynamic head and the entry loss.
			c2 = cRes*cRes - k*(1+bc.ZetaIn)*w*w
		} else {
			// Outflow: the jet discharges at reservoir pressure plus the
			// configured exit loss.
			c2 = cRes*cRes + k*bc.ZetaOut*w*w
		}
		if c2 <= 0 {
			c2 = 1e-6
		}
		cNext := math.Sqrt(c2)
		if s.BoundaryTrace != nil {
			s.BoundaryTrace(seg.ID, end, it, cNext, w)
		}
		if math.Abs(cNext-c) < portalTol*cRes {
			c = cNext
			w = (K - c) / k
			return w, c, IterResult{Value: w, Converged: true, Iterations: it + 1}
		}
		c = cNext
	}
	w = (K - c) / k
	return w, c, IterResult{
		Value:      w,
		Converged:  false,
		Iterations: portalMaxIter,
		Diagnostic: "portal fixed point exhausted its budget; using last iterate",
	}
}
