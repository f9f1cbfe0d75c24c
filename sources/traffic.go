package sources

import (
	"github.com/ventworks/ductflow/network"
)

// TrafficForces holds the precomputed per-gridpoint drag geometry for one
// traffic block. It is rebuilt whenever the traffic state changes, not every
// timestep.
type TrafficForces struct {
	Block   *network.TrafficBlock
	weights []float64 // block length per gridpoint control volume
}

// NewTrafficForces resolves the block onto its segment's grid.
func NewTrafficForces(tb *network.TrafficBlock) *TrafficForces {
	return &TrafficForces{Block: tb, weights: tb.CellWeights()}
}

// Accumulate adds the traffic drag body force per unit mass onto each
// gridpoint source slot. Each vehicle class contributes
// n * Cd * Af * (v-u)|v-u| / (2 Aeff) per meter of occupied route, where n is
// vehicles per meter; with the blockage correction enabled, Aeff subtracts
// the frontal area taken up by the vehicles in the control volume.
func (tf *TrafficForces) Accumulate(src []float64) {
	var (
		tb  = tf.Block
		seg = tb.Seg
	)
	for i, w := range tf.weights {
		if w == 0 {
			continue
		}
		u := seg.Cells[i].U
		vol := controlLength(seg, i)
		var f float64
		for _, vc := range tb.Classes {
			aEff := seg.Area
			if tb.Blockage {
				aEff = seg.Area - vc.Density*vc.FrontalArea*vol
				if aEff < 0.1*seg.Area {
					aEff = 0.1 * seg.Area
				}
			}
			rel := vc.Speed - u
			mag := rel
			if mag < 0 {
				mag = -mag
			}
			// force per meter of occupied route, spread over the control volume
			f += vc.Density * vc.DragCoeff * vc.FrontalArea * rel * mag / (2 * aEff) * (w / vol)
		}
		src[i] += f
	}
}

// controlLength is the control-volume length owned by gridpoint i; end
// points own half cells.
func controlLength(seg *network.Segment, i int) float64 {
	if i == 0 || i == len(seg.Cells)-1 {
		return 0.5 * seg.Dx
	}
	return seg.Dx
}
