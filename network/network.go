package network

import (
	"github.com/pkg/errors"
)

// Network is the fully resolved graph handed over by the (external) network
// builder: segments, junction nodes, fans, jet fans, traffic and boundary
// conditions, with every segment end attached to exactly one of a boundary
// or a node.
type Network struct {
	Gas      Gas
	Segments []*Segment
	Nodes    []*Node
	Fans     []*Fan
	JetFans  []*JetFan
	Traffic  []*TrafficBlock
}

// Attach wires one segment end to a node and records the back reference.
func (nw *Network) Attach(n *Node, seg *Segment, end SegmentEnd, zetaBack, zetaForward float64) *BranchEnd {
	b := &BranchEnd{Seg: seg, End: end, ZetaBack: zetaBack, ZetaForward: zetaForward}
	n.Branches = append(n.Branches, b)
	seg.Nodes[end] = n
	return b
}

// SetBoundary attaches a portal condition to a segment end.
func (nw *Network) SetBoundary(seg *Segment, end SegmentEnd, bc *BoundaryCondition) {
	seg.Bounds[end] = bc
}

// Discretize sizes every segment's cells for the given timestep and expected
// maximum velocity.
func (nw *Network) Discretize(dt, maxVelocity float64) error {
	c0 := nw.Gas.SoundSpeed()
	for _, s := range nw.Segments {
		if err := s.Discretize(dt, c0, maxVelocity, nw.Gas); err != nil {
			return errors.Wrap(err, "discretize")
		}
	}
	return nil
}

// Validate rejects inconsistent topology before the first timestep: dangling
// or doubly-attached segment ends, unsupported junction sizes, unreachable
// segments, bad element parameters.
func (nw *Network) Validate() error {
	if len(nw.Segments) == 0 {
		return errors.New("network has no segments")
	}
	if nw.Gas.Gamma <= 1 || nw.Gas.RhoRef <= 0 || nw.Gas.PRef <= 0 {
		return errors.New("invalid gas properties")
	}
	for _, s := range nw.Segments {
		if s.Length <= 0 || s.Area <= 0 || s.Perimeter <= 0 {
			return errors.Errorf("segment %s: non-positive geometry", s.ID)
		}
		for _, end := range []SegmentEnd{BackEnd, ForwardEnd} {
			hasBC := s.Bounds[end] != nil
			hasNode := s.Nodes[end] != nil
			if hasBC == hasNode {
				return errors.Errorf("segment %s %s end: must attach exactly one of boundary or junction",
					s.ID, end)
			}
			if hasBC {
				if err := s.Bounds[end].validate(); err != nil {
					return errors.Wrapf(err, "segment %s %s end", s.ID, end)
				}
			}
		}
	}
	for _, n := range nw.Nodes {
		if err := n.validate(); err != nil {
			return err
		}
	}
	for _, f := range nw.Fans {
		if err := f.validate(); err != nil {
			return err
		}
	}
	for _, jf := range nw.JetFans {
		if err := jf.validate(); err != nil {
			return err
		}
	}
	for _, tb := range nw.Traffic {
		if err := tb.validate(); err != nil {
			return err
		}
	}
	return nw.checkReachable()
}

// checkReachable walks the segment graph from every boundary portal and
// requires that the walk covers all segments. A segment no portal can reach
// carries no defined flow state.
func (nw *Network) checkReachable() error {
	seen := make(map[*Segment]bool, len(nw.Segments))
	var queue []*Segment
	for _, s := range nw.Segments {
		if s.Bounds[BackEnd] != nil || s.Bounds[ForwardEnd] != nil {
			seen[s] = true
			queue = append(queue, s)
		}
	}
	if len(queue) == 0 {
		return errors.New("network has no boundary portals")
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, end := range []SegmentEnd{BackEnd, ForwardEnd} {
			n := s.Nodes[end]
			if n == nil {
				continue
			}
			for _, b := range n.Branches {
				if !seen[b.Seg] {
					seen[b.Seg] = true
					queue = append(queue, b.Seg)
				}
			}
		}
	}
	for _, s := range nw.Segments {
		if !seen[s] {
			return errors.Errorf("segment %s is unreachable from any portal", s.ID)
		}
	}
	return nil
}
