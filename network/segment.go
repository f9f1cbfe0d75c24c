package network

import (
	"math"

	"github.com/pkg/errors"
)

// FrictionModel selects the wall-friction formulation for a run.
type FrictionModel uint8

const (
	FrictionFixed FrictionModel = iota
	FrictionColebrook
	FrictionHaaland
	FrictionSwameeJain
	FrictionMoody
)

var frictionNames = []string{"Fixed", "Colebrook", "Haaland", "SwameeJain", "Moody"}

func (fm FrictionModel) String() string {
	if int(fm) >= len(frictionNames) {
		return "Unknown"
	}
	return frictionNames[fm]
}

// NewFrictionModel maps the run-parameter string onto a model constant.
func NewFrictionModel(name string) (FrictionModel, error) {
	for i, n := range frictionNames {
		if n == name {
			return FrictionModel(i), nil
		}
	}
	return FrictionFixed, errors.Errorf("unknown friction model %q", name)
}

// Cell is one characteristic gridpoint of a segment. Segment.Cells holds the
// n+1 gridpoints bounding the n equal computational cells; interior points
// are advanced by the integrator, end points by the boundary or junction
// solver of the attached end.
type Cell struct {
	X   float64 // distance from the segment back end [m]
	U   float64 // velocity, positive toward the forward end [m/s]
	C   float64 // celerity (local speed of sound) [m/s]
	Src float64 // accumulated body force per unit mass for the step [m/s^2]
}

// SegmentEnd selects one of the two ends of a segment.
type SegmentEnd uint8

const (
	BackEnd SegmentEnd = iota
	ForwardEnd
)

func (e SegmentEnd) String() string {
	if e == BackEnd {
		return "Back"
	}
	return "Forward"
}

// Segment is one duct of the network with its computational cells. Geometry
// is fixed for the run; cell state mutates every timestep.
type Segment struct {
	ID        string
	Length    float64 // [m]
	Area      float64 // [m^2]
	Perimeter float64 // [m]
	Grade     float64 // sin of incline angle, positive rising toward forward end

	// Friction specification: FixedFactor is used by the Fixed model,
	// Roughness [m] by all Colebrook-family models.
	FixedFactor float64
	Roughness   float64

	Cells []Cell
	Dx    float64

	// End attachments, resolved during Network construction.
	Bounds [2]*BoundaryCondition // indexed by SegmentEnd, nil if junction-attached
	Nodes  [2]*Node              // indexed by SegmentEnd, nil if boundary-attached
}

// HydraulicDiameter returns 4A/P.
func (s *Segment) HydraulicDiameter() float64 {
	return 4 * s.Area / s.Perimeter
}

// NCells returns the number of computational cells (gridpoints minus one).
func (s *Segment) NCells() int {
	return len(s.Cells) - 1
}

// End returns the gridpoint index of the given end.
func (s *Segment) End(e SegmentEnd) int {
	if e == BackEnd {
		return 0
	}
	return len(s.Cells) - 1
}

// Discretize partitions the segment so that the fastest characteristic
// (soundSpeed + maxVelocity) cannot cross more than one cell per timestep.
// The cell count is the largest integer count that still satisfies the
// criterion, minimum one cell. If the flow that develops exceeds maxVelocity
// the criterion is violated at runtime, not here.
func (s *Segment) Discretize(dt, soundSpeed, maxVelocity float64, gas Gas) error {
	if s.Length <= 0 || s.Area <= 0 || s.Perimeter <= 0 {
		return errors.Errorf("segment %s: non-positive geometry", s.ID)
	}
	if dt <= 0 {
		return errors.New("non-positive timestep")
	}
	minDx := (soundSpeed + maxVelocity) * dt
	n := int(math.Floor(s.Length / minDx))
	if n < 1 {
		n = 1
	}
	s.Dx = s.Length / float64(n)
	s.Cells = make([]Cell, n+1)
	c0 := gas.SoundSpeed()
	for i := range s.Cells {
		s.Cells[i].X = float64(i) * s.Dx
		s.Cells[i].C = c0
	}
	return nil
}

// CellIndexAt returns the index of the computational cell containing x,
// clamped to the segment.
func (s *Segment) CellIndexAt(x float64) int {
	i := int(x / s.Dx)
	if i < 0 {
		i = 0
	}
	if i > s.NCells()-1 {
		i = s.NCells() - 1
	}
	return i
}
