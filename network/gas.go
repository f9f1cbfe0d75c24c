package network

import "math"

// Gas holds the working-gas model for a run. Density and pressure are
// recovered from celerity through the isentropic relations referenced to the
// ambient state, so a (velocity, celerity) pair fully determines a cell.
type Gas struct {
	Gamma  float64 // ratio of specific heats
	RhoRef float64 // ambient density [kg/m^3]
	PRef   float64 // ambient pressure [Pa]
}

// AirAtRest is the default ambient used when the run parameters omit gas
// properties.
var AirAtRest = Gas{Gamma: 1.4, RhoRef: 1.2, PRef: 101325}

// SoundSpeed returns the ambient speed of sound.
func (g Gas) SoundSpeed() float64 {
	return math.Sqrt(g.Gamma * g.PRef / g.RhoRef)
}

// Density returns the density consistent with celerity c.
func (g Gas) Density(c float64) float64 {
	return g.RhoRef * math.Pow(c/g.SoundSpeed(), 2/(g.Gamma-1))
}

// Pressure returns the static pressure consistent with celerity c.
func (g Gas) Pressure(c float64) float64 {
	return g.PRef * math.Pow(c/g.SoundSpeed(), 2*g.Gamma/(g.Gamma-1))
}

// CelerityFromPressure inverts Pressure.
func (g Gas) CelerityFromPressure(p float64) float64 {
	return g.SoundSpeed() * math.Pow(p/g.PRef, (g.Gamma-1)/(2*g.Gamma))
}

// InvariantCoeff is (gamma-1)/2, the factor pairing velocity with celerity in
// the Riemann invariants c +/- (gamma-1)/2 * u.
func (g Gas) InvariantCoeff() float64 {
	return 0.5 * (g.Gamma - 1)
}
