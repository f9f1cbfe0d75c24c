package moc

import (
	"math"

	"github.com/ventworks/ductflow/network"
)

const (
	fanMaxIter = 40
	fanTolDP   = 0.01 // [Pa] residual between fan rise and system demand
)

// resolveFans finds every fan's duty point for the step: the volume flow at
// which the affinity-scaled characteristic meets the system resistance seen
// through the two adjacent characteristics. The system relation is implicit
// in the still-unknown velocities, so the balance is a bounded root-find. A
// stall hump in the curve can defeat the secant iteration; the solver then
// keeps the last iterate, warns, and the run continues -- the resulting
// hunting near stall is an observable property, not an error.
func (s *Simulation) resolveFans() {
	for _, f := range s.Net.Fans {
		s.resolveFan(f)
	}
}

func (s *Simulation) resolveFan(f *network.Fan) {
	var (
		g      = s.Gas
		k      = g.InvariantCoeff()
		b0, b1 = f.Node.Branches[0], f.Node.Branches[1]
		K0     = s.endInvariant(b0.Seg, b0.End)
		K1     = s.endInvariant(b1.Seg, b1.End)
		speed  = f.Speed(s.Time)
	)
	// Total-pressure demand the network places on the fan at through-flow q
	// (positive from branch 0 to branch 1).
	demand := func(q float64) float64 {
		w0 := q / b0.Area()  // into the node
		w1 := -q / b1.Area() // out of the node
		c0 := K0 - k*w0
		c1 := K1 - k*w1
		pt0 := g.Pressure(c0) + 0.5*g.Density(c0)*w0*w0
		pt1 := g.Pressure(c1) + 0.5*g.Density(c1)*w1*w1
		return pt1 - pt0
	}
	resid := func(q float64) float64 {
		rise, _ := f.RiseAt(q, speed)
		return demand(q) - rise
	}

	// Iterates stay inside the flow range that keeps both branch celerities
	// positive.
	qLim := 0.9 / k * math.Min(K0*b0.Area(), K1*b1.Area())
	q0 := f.Duty.Q
	q1 := q0 + math.Max(0.1, 0.01*math.Abs(q0))
	r0, r1 := resid(q0), resid(q1)
	var (
		q         = q1
		converged bool
		iters     int
	)
	for it := 0; it < fanMaxIter; it++ {
		iters = it + 1
		if math.Abs(r1) < fanTolDP {
			q = q1
			converged = true
			break
		}
		var qn float64
		if math.Abs(r1-r0) < 1e-9*(math.Abs(r1)+1) {
			// Degenerate secant slope (flat residual, stall cliff):
			// contract instead of extrapolating off the curve.
			qn = 0.5 * (q0 + q1)
		} else {
			qn = q1 - r1*(q1-q0)/(r1-r0)
		}
		if qn > qLim {
			qn = qLim
		} else if qn < -qLim {
			qn = -qLim
		}
		q0, r0 = q1, r1
		q1, r1 = qn, resid(qn)
		q = qn
	}
	if !converged {
		s.Warnings.Add(Warning{
			Component:  "fan",
			ID:         f.ID,
			Time:       s.Time,
			Iterations: iters,
			Detail:     "fan duty point did not settle (stall region?); using last iterate",
		})
	}

	rise, extrapolated := f.RiseAt(q, speed)
	f.Duty = network.DutyPoint{Q: q, DP: rise, Extrapolated: extrapolated, Converged: converged}

	w0 := q / b0.Area()
	w1 := -q / b1.Area()
	s.setEndState(b0.Seg, b0.End, w0, K0-k*w0)
	s.setEndState(b1.Seg, b1.End, w1, K1-k*w1)
}
