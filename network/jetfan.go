package network

import "github.com/pkg/errors"

// JetFanMode selects how the thrust enters the momentum equation.
type JetFanMode uint8

const (
	// JetPoint deposits the whole thrust into the single cell holding the
	// fan, giving a step in the pressure profile.
	JetPoint JetFanMode = iota
	// JetDistributed spreads the thrust uniformly over SpreadLength
	// downstream of the fan, giving a ramp instead.
	JetDistributed
)

func (m JetFanMode) String() string {
	if m == JetPoint {
		return "Point"
	}
	return "Distributed"
}

// JetFan is a momentum-injection fan mounted inside a segment.
type JetFan struct {
	ID           string
	Seg          *Segment
	Position     float64 // from the segment back end [m]
	NozzleArea   float64 // [m^2]
	JetVelocity  float64 // discharge velocity, signed along the segment [m/s]
	Mode         JetFanMode
	SpreadLength float64 // [m], JetDistributed only
	Speed        SpeedSchedule
}

// Thrust returns the momentum source [N] at tunnel velocity u and speed
// fraction s. The jet discharges at s*JetVelocity into flow moving at u.
func (jf *JetFan) Thrust(u float64, rho float64, s float64) float64 {
	vj := s * jf.JetVelocity
	if vj == 0 {
		return 0
	}
	mdot := rho * jf.NozzleArea * vj
	if mdot < 0 {
		mdot = -mdot
	}
	return mdot * (vj - u)
}

func (jf *JetFan) validate() error {
	if jf.Seg == nil {
		return errors.Errorf("jet fan %s: no segment", jf.ID)
	}
	if jf.Position < 0 || jf.Position > jf.Seg.Length {
		return errors.Errorf("jet fan %s: position %g outside segment %s", jf.ID, jf.Position, jf.Seg.ID)
	}
	if jf.NozzleArea <= 0 {
		return errors.Errorf("jet fan %s: non-positive nozzle area", jf.ID)
	}
	if jf.Mode == JetDistributed && jf.SpreadLength <= 0 {
		return errors.Errorf("jet fan %s: distributed mode needs a spread length", jf.ID)
	}
	if jf.Speed == nil {
		return errors.Errorf("jet fan %s: no speed schedule", jf.ID)
	}
	return nil
}
