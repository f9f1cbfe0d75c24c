package network

import "github.com/pkg/errors"

// BoundaryKind is the variant tag of a portal condition.
type BoundaryKind uint8

const (
	ReservoirPressure BoundaryKind = iota
	FixedVelocity
	FixedVolumeFlow
)

var boundaryNames = []string{"ReservoirPressure", "FixedVelocity", "FixedVolumeFlow"}

func (k BoundaryKind) String() string {
	if int(k) >= len(boundaryNames) {
		return "Unknown"
	}
	return boundaryNames[k]
}

// BoundaryCondition is one portal condition at a segment end.
//
// For ReservoirPressure, Value is the reservoir total pressure [Pa] and
// ZetaIn/ZetaOut are the portal entry and exit loss coefficients (entry is
// flow into the duct). For FixedVelocity, Value is the velocity into the duct
// [m/s]; for FixedVolumeFlow it is the volume flow into the duct [m^3/s].
// RiseTime ramps the target linearly from zero; it applies to the velocity
// and volume-flow kinds and is ignored by reservoirs.
type BoundaryCondition struct {
	Kind     BoundaryKind
	Value    float64
	RiseTime float64 // [s], zero means imposed immediately
	ZetaIn   float64
	ZetaOut  float64
}

// Target returns the ramped target value at simulation time t. Strictly
// between zero and Value for 0 < t < RiseTime, exactly Value from RiseTime on.
func (bc *BoundaryCondition) Target(t float64) float64 {
	if bc.Kind == ReservoirPressure || bc.RiseTime <= 0 || t >= bc.RiseTime {
		return bc.Value
	}
	if t <= 0 {
		return 0
	}
	return bc.Value * t / bc.RiseTime
}

func (bc *BoundaryCondition) validate() error {
	switch bc.Kind {
	case ReservoirPressure:
		if bc.Value <= 0 {
			return errors.New("reservoir pressure must be positive")
		}
	case FixedVelocity, FixedVolumeFlow:
		if bc.RiseTime < 0 {
			return errors.New("negative rise time")
		}
	default:
		return errors.Errorf("unknown boundary kind %d", bc.Kind)
	}
	if bc.ZetaIn < 0 || bc.ZetaOut < 0 {
		return errors.New("negative portal loss coefficient")
	}
	return nil
}
