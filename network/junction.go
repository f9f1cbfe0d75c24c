package network

import "github.com/pkg/errors"

// AeroType classifies the aerodynamic treatment of a node.
type AeroType uint8

const (
	AeroStraight AeroType = iota // straight-through, symmetric losses
	AeroNWay                     // general N-way, symmetric losses
	AeroAngled                   // angled junction, empirical correlations
)

var aeroNames = []string{"Straight", "NWay", "Angled"}

func (a AeroType) String() string {
	if int(a) >= len(aeroNames) {
		return "Unknown"
	}
	return aeroNames[a]
}

// BranchEnd ties one segment end to a node. ZetaBack and ZetaForward are the
// fixed loss coefficients for flow running in the segment back and forward
// directions; the junction solver maps them onto the into-junction frame
// through the orientation.
type BranchEnd struct {
	Seg         *Segment
	End         SegmentEnd
	ZetaBack    float64
	ZetaForward float64

	// Angled-junction correlation inputs, used only when the owning node has
	// UseAngledLosses set.
	Angle       float64 // branch angle from the main run [rad]
	AspectRatio float64
}

// Area returns the branch cross-section at the junction.
func (b *BranchEnd) Area() float64 {
	return b.Seg.Area
}

// IntoJunction maps a segment-frame velocity at this branch end onto the
// into-junction frame.
func (b *BranchEnd) IntoJunction(u float64) float64 {
	if b.End == ForwardEnd {
		return u
	}
	return -u
}

// FromJunction is the inverse of IntoJunction.
func (b *BranchEnd) FromJunction(w float64) float64 {
	return b.IntoJunction(w) // the map is its own inverse
}

// ZetaIn returns the loss coefficient for flow from the branch into the
// junction, ZetaOut for the reverse.
func (b *BranchEnd) ZetaIn() float64 {
	if b.End == ForwardEnd {
		return b.ZetaForward
	}
	return b.ZetaBack
}

func (b *BranchEnd) ZetaOut() float64 {
	if b.End == ForwardEnd {
		return b.ZetaBack
	}
	return b.ZetaForward
}

// Node is a junction of 2 to 6 branch ends.
//
// UseAngledLosses must be set explicitly for the angled correlations to run;
// an Angled AeroType without the flag falls back to the symmetric loss model.
// This mirrors the behavior of long-standing network descriptions and is kept
// as-is; the fallback is reported once per run so it is at least visible.
type Node struct {
	ID              string
	Aero            AeroType
	UseAngledLosses bool
	Branches        []*BranchEnd
}

// Ways returns the branch count.
func (n *Node) Ways() int {
	return len(n.Branches)
}

// MinWays and MaxWays bound the supported junction sizes.
const (
	MinWays = 2
	MaxWays = 6
)

func (n *Node) validate() error {
	if n.Ways() < MinWays || n.Ways() > MaxWays {
		return errors.Errorf("node %s: unsupported branch count %d (supported %d..%d)",
			n.ID, n.Ways(), MinWays, MaxWays)
	}
	for _, b := range n.Branches {
		if b.Seg == nil {
			return errors.Errorf("node %s: branch end with no segment", n.ID)
		}
		if b.ZetaBack < 0 || b.ZetaForward < 0 {
			return errors.Errorf("node %s: negative loss coefficient on segment %s", n.ID, b.Seg.ID)
		}
	}
	return nil
}
