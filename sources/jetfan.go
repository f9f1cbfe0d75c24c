package sources

import (
	"github.com/ventworks/ductflow/network"
)

// JetFanForces converts one jet fan's thrust into per-gridpoint body forces.
type JetFanForces struct {
	Fan     *network.JetFan
	weights []float64 // fraction of the thrust landing on each gridpoint
}

// NewJetFanForces resolves the fan's spatial distribution onto the grid.
// Point mode loads the single gridpoint nearest the fan; distributed mode
// spreads the thrust uniformly over SpreadLength downstream of the fan,
// clipped at the segment forward end. The two modes give a step versus a
// ramp in the resulting pressure profile.
func NewJetFanForces(jf *network.JetFan) *JetFanForces {
	seg := jf.Seg
	w := make([]float64, len(seg.Cells))
	switch jf.Mode {
	case network.JetPoint:
		i := nearestGridpoint(seg, jf.Position)
		w[i] = 1
	case network.JetDistributed:
		end := jf.Position + jf.SpreadLength
		if end > seg.Length {
			end = seg.Length
		}
		span := end - jf.Position
		for i := range seg.Cells {
			lo := seg.Cells[i].X - 0.5*seg.Dx
			hi := seg.Cells[i].X + 0.5*seg.Dx
			if lo < 0 {
				lo = 0
			}
			if hi > seg.Length {
				hi = seg.Length
			}
			w[i] = overlapLen(lo, hi, jf.Position, end) / span
		}
	}
	return &JetFanForces{Fan: jf, weights: w}
}

// Accumulate adds the thrust as a body force per unit mass at each loaded
// gridpoint: T * weight / (rho * A * controlLength).
func (jff *JetFanForces) Accumulate(src []float64, gas network.Gas, t float64) {
	var (
		jf  = jff.Fan
		seg = jf.Seg
		s   = jf.Speed(t)
	)
	if s == 0 {
		return
	}
	for i, w := range jff.weights {
		if w == 0 {
			continue
		}
		rho := gas.Density(seg.Cells[i].C)
		thrust := jf.Thrust(seg.Cells[i].U, rho, s)
		src[i] += thrust * w / (rho * seg.Area * controlLength(seg, i))
	}
}

func nearestGridpoint(seg *network.Segment, x float64) int {
	i := int(x/seg.Dx + 0.5)
	if i < 0 {
		i = 0
	}
	if i > len(seg.Cells)-1 {
		i = len(seg.Cells) - 1
	}
	return i
}

func overlapLen(alo, ahi, blo, bhi float64) float64 {
	lo, hi := alo, ahi
	if blo > lo {
		lo = blo
	}
	if bhi < hi {
		hi = bhi
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
