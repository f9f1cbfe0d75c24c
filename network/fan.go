package network

import (
	"sort"

	"github.com/pkg/errors"
)

// CurvePoint is one (volume flow, total pressure rise) sample of a fan
// characteristic.
type CurvePoint struct {
	Q  float64 // volume flow [m^3/s]
	DP float64 // total pressure rise [Pa]
}

// Characteristic is a piecewise-linear fan curve, immutable once built.
// Evaluation past either end extrapolates linearly from the nearest two
// defined points and says so, because a duty point can legitimately land
// there (reverse flow through a forwards-only curve, windmilling).
type Characteristic struct {
	pts []CurvePoint
}

// NewCharacteristic copies and sorts the points by volume flow.
func NewCharacteristic(pts []CurvePoint) (*Characteristic, error) {
	if len(pts) < 2 {
		return nil, errors.New("fan characteristic needs at least two points")
	}
	cp := make([]CurvePoint, len(pts))
	copy(cp, pts)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Q < cp[j].Q })
	for i := 1; i < len(cp); i++ {
		if cp[i].Q == cp[i-1].Q {
			return nil, errors.Errorf("duplicate volume flow %g in fan characteristic", cp[i].Q)
		}
	}
	return &Characteristic{pts: cp}, nil
}

// Eval returns the pressure rise at volume flow q and whether the value came
// from outside the defined range.
func (ch *Characteristic) Eval(q float64) (dp float64, extrapolated bool) {
	pts := ch.pts
	n := len(pts)
	switch {
	case q < pts[0].Q:
		return lineThrough(pts[0], pts[1], q), true
	case q > pts[n-1].Q:
		return lineThrough(pts[n-2], pts[n-1], q), true
	}
	i := sort.Search(n, func(i int) bool { return pts[i].Q >= q }) // first point at or past q
	if pts[i].Q == q {
		return pts[i].DP, false
	}
	return lineThrough(pts[i-1], pts[i], q), false
}

// QRange returns the defined volume-flow range.
func (ch *Characteristic) QRange() (lo, hi float64) {
	return ch.pts[0].Q, ch.pts[len(ch.pts)-1].Q
}

func lineThrough(a, b CurvePoint, q float64) float64 {
	return a.DP + (b.DP-a.DP)*(q-a.Q)/(b.Q-a.Q)
}

// SpeedSchedule yields the fan speed fraction at simulation time t. Constant
// schedules are the common case; variable ones come from the network
// description.
type SpeedSchedule func(t float64) float64

// ConstantSpeed returns a schedule pinned at s.
func ConstantSpeed(s float64) SpeedSchedule {
	return func(float64) float64 { return s }
}

// DutyPoint is a fan's resolved operating point for one timestep.
type DutyPoint struct {
	Q            float64 // volume flow, positive in the fan forward direction
	DP           float64 // total pressure rise [Pa]
	Extrapolated bool    // the point lies outside the defined characteristic
	Converged    bool
}

// Fan is an inline fan occupying a two-branch node. Node.Branches[0] is the
// suction side for positive speed; positive duty flow runs from branch 0 to
// branch 1.
type Fan struct {
	ID       string
	Node     *Node
	Forward  *Characteristic
	Reverse  *Characteristic // optional, nil when the fan has no reverse curve
	Diameter float64
	Speed    SpeedSchedule

	Duty DutyPoint // recomputed every timestep
}

// CurveAt returns the characteristic and speed scale magnitude for speed
// fraction s. Negative s selects the reverse-rotation curve when the fan has
// one, otherwise the forward curve mirrored through the origin.
func (f *Fan) CurveAt(s float64) (ch *Characteristic, scale float64, mirrored bool) {
	if s >= 0 {
		return f.Forward, s, false
	}
	if f.Reverse != nil {
		return f.Reverse, -s, false
	}
	return f.Forward, -s, true
}

// RiseAt evaluates the affinity-scaled characteristic at volume flow q and
// speed fraction s: flow scales with s, pressure with s^2. A stopped fan is a
// transparent element.
func (f *Fan) RiseAt(q, s float64) (dp float64, extrapolated bool) {
	if s == 0 {
		return 0, false
	}
	ch, sc, mirrored := f.CurveAt(s)
	if mirrored {
		dp, extrapolated = ch.Eval(-q / sc)
		return -dp * sc * sc, extrapolated
	}
	dp, extrapolated = ch.Eval(q / sc)
	return dp * sc * sc, extrapolated
}

func (f *Fan) validate() error {
	if f.Forward == nil {
		return errors.Errorf("fan %s: no forward characteristic", f.ID)
	}
	if f.Diameter <= 0 {
		return errors.Errorf("fan %s: non-positive diameter", f.ID)
	}
	if f.Node == nil || f.Node.Ways() != 2 {
		return errors.Errorf("fan %s: must occupy a two-branch node", f.ID)
	}
	if f.Speed == nil {
		return errors.Errorf("fan %s: no speed schedule", f.ID)
	}
	return nil
}
