package network

import "github.com/pkg/errors"

// VehicleClass is one vehicle type inside a traffic block.
type VehicleClass struct {
	Name        string
	DragCoeff   float64 // Cd
	FrontalArea float64 // [m^2]
	Density     float64 // vehicles per meter of route
	Speed       float64 // [m/s], positive toward the segment forward end
}

// TrafficBlock is a stretch of traffic on one segment. Start/End measure
// from the segment back end; the block is converted to per-cell drag at setup
// and again whenever its state changes.
type TrafficBlock struct {
	Seg     *Segment
	Start   float64 // [m]
	End     float64 // [m]
	Classes []VehicleClass

	// Blockage reduces the effective free area by the area occupied by
	// vehicles. Off unless the network description asks for it.
	Blockage bool
}

// Extent returns the block length.
func (tb *TrafficBlock) Extent() float64 {
	return tb.End - tb.Start
}

// CellWeights returns, per gridpoint of the segment, the length of the block
// overlapping that gridpoint's control volume. End gridpoints own half
// cells. The weights sum to Extent regardless of how the block aligns with
// cell boundaries, which is what keeps the resulting flow insensitive to the
// alignment.
func (tb *TrafficBlock) CellWeights() []float64 {
	s := tb.Seg
	w := make([]float64, len(s.Cells))
	for i := range s.Cells {
		lo := s.Cells[i].X - 0.5*s.Dx
		hi := s.Cells[i].X + 0.5*s.Dx
		if lo < 0 {
			lo = 0
		}
		if hi > s.Length {
			hi = s.Length
		}
		w[i] = overlap(lo, hi, tb.Start, tb.End)
	}
	return w
}

func overlap(alo, ahi, blo, bhi float64) float64 {
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

func (tb *TrafficBlock) validate() error {
	if tb.Seg == nil {
		return errors.New("traffic block with no segment")
	}
	if tb.Start < 0 || tb.End > tb.Seg.Length || tb.End <= tb.Start {
		return errors.Errorf("traffic block on segment %s: extent [%g, %g] outside [0, %g]",
			tb.Seg.ID, tb.Start, tb.End, tb.Seg.Length)
	}
	for _, vc := range tb.Classes {
		if vc.DragCoeff < 0 || vc.FrontalArea <= 0 || vc.Density < 0 {
			return errors.Errorf("traffic block on segment %s: bad vehicle class %q", tb.Seg.ID, vc.Name)
		}
	}
	return nil
}
