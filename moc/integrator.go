package moc

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ventworks/ductflow/network"
)

// sweepInterior advances every interior gridpoint of seg along the two
// characteristics, from previous-step state only. End gridpoints are left
// for the boundary and junction solvers.
func (s *Simulation) sweepInterior(seg *network.Segment) error {
	var (
		sc = s.scratch[seg]
		k  = s.Gas.InvariantCoeff()
		dt = s.Cfg.Dt
		r  = dt / seg.Dx
		n  = len(seg.Cells) - 1
	)
	// The fastest characteristic must not cross more than one cell.
	if lm := s.Kern.MaxWaveSpeed(sc.uOld, sc.cOld); lm*dt > seg.Dx*(1+1e-12) {
		worst := 0
		worstS := 0.0
		for i := range sc.uOld {
			if sp := math.Abs(sc.uOld[i]) + sc.cOld[i]; sp > worstS {
				worstS = sp
				worst = i
			}
		}
		return &FatalError{Segment: seg.ID, Cell: worst, Time: s.Time,
			Err: errors.Wrapf(ErrStability, "wave speed %.1f m/s exceeds %.1f m/s cell limit", worstS, seg.Dx/dt)}
	}

	s.Kern.Invariants(sc.uOld, sc.cOld, k, sc.alpha, sc.beta)
	for i := 1; i < n; i++ {
		// Feet of the forward and backward characteristics, located by
		// upwind linear interpolation in the neighbor interval.
		sf := clamp01(r * (sc.uOld[i] + sc.cOld[i]))
		sb := clamp01(r * (sc.cOld[i] - sc.uOld[i]))
		aFoot := sc.alpha[i] - sf*(sc.alpha[i]-sc.alpha[i-1])
		bFoot := sc.beta[i] - sb*(sc.beta[i]-sc.beta[i+1])
		sc.aNew[i] = aFoot + k*dt*sc.src[i]
		sc.bNew[i] = bFoot - k*dt*sc.src[i]
	}
	// End slots carry the old invariants so the batch recombine below stays
	// well defined; the end solvers overwrite them.
	sc.aNew[0], sc.bNew[0] = sc.alpha[0], sc.beta[0]
	sc.aNew[n], sc.bNew[n] = sc.alpha[n], sc.beta[n]
	s.Kern.Recombine(sc.aNew, sc.bNew, k, sc.uNew, sc.cNew)

	for i := 1; i < n; i++ {
		c := sc.cNew[i]
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
			return &FatalError{Segment: seg.ID, Cell: i, Time: s.Time,
				Err: errors.Wrapf(ErrStability, "non-physical state: celerity %g", c)}
		}
	}
	return nil
}

// endInvariant returns the characteristic invariant arriving at the given
// segment end from the interior, expressed in the out-of-segment-positive
// frame: K = c + (gamma-1)/2 * w, with w positive leaving the segment. Both
// the boundary and the junction solvers consume this one number per branch,
// which is what makes them independent of branch orientation.
func (s *Simulation) endInvariant(seg *network.Segment, end network.SegmentEnd) float64 {
	var (
		sc = s.scratch[seg]
		k  = s.Gas.InvariantCoeff()
		dt = s.Cfg.Dt
		r  = dt / seg.Dx
	)
	if end == network.ForwardEnd {
		n := len(seg.Cells) - 1
		sf := clamp01(r * (sc.uOld[n] + sc.cOld[n]))
		aFoot := sc.alpha[n] - sf*(sc.alpha[n]-sc.alpha[n-1])
		return aFoot + k*dt*sc.src[n]
	}
	sb := clamp01(r * (sc.cOld[0] - sc.uOld[0]))
	bFoot := sc.beta[0] - sb*(sc.beta[0]-sc.beta[1])
	return bFoot - k*dt*sc.src[0]
}

// setEndState writes a solved end gridpoint back in the segment frame.
func (s *Simulation) setEndState(seg *network.Segment, end network.SegmentEnd, wOut, c float64) {
	sc := s.scratch[seg]
	i := seg.End(end)
	u := wOut
	if end == network.BackEnd {
		u = -wOut
	}
	sc.uNew[i] = u
	sc.cNew[i] = c
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
