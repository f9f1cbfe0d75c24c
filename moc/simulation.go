// Package moc advances a tunnel-ventilation network through time with the
// method of characteristics: an explicit interior sweep per segment, then
// portal boundaries, then junction and fan nodes, all against the previous
// timestep's state, so no solver ever mixes old and new values in one sweep.
package moc

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ventworks/ductflow/kernel"
	"github.com/ventworks/ductflow/network"
	"github.com/ventworks/ductflow/sources"
)

// ErrStability is the fatal class: a cell went non-physical after the
// CFL-type criterion was exceeded. The run unwinds immediately; there is no
// retry with a smaller timestep.
var ErrStability = errors.New("stability criterion violated")

// FatalError names the offending cell, segment and time of a terminating
// failure.
type FatalError struct {
	Segment string
	Cell    int
	Time    float64
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("segment %s cell %d at t=%.4fs: %v", e.Segment, e.Cell, e.Time, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Config carries the global run parameters the external builder resolves.
type Config struct {
	Dt              float64 // timestep [s]
	FinalTime       float64 // [s]
	MaxVelocity     float64 // expected maximum flow velocity for cell sizing [m/s]
	StabilityMargin float64 // multiplier on MaxVelocity, default 1.1
	FrictionModel   network.FrictionModel
	KernelName      string // kernel.Reference or kernel.Optimized
	ThermoEvery     int    // steps between slow (traffic/source geometry) refreshes
	Logger          *log.Logger
}

// BranchFlow is one junction branch's resolved state for the step, kept for
// the result layer.
type BranchFlow struct {
	SegID    string
	End      network.SegmentEnd
	MassFlow float64 // positive into the junction [kg/s]
	Velocity float64 // into-junction frame [m/s]
}

type segScratch struct {
	alpha, beta []float64
	aNew, bNew  []float64
	uNew, cNew  []float64
	uOld, cOld  []float64
	src         []float64
}

// Simulation owns the whole mutable state of one run. Construct with New,
// advance with Run or Step, read results between steps; everything is
// released when the value goes out of scope at end of run.
type Simulation struct {
	Net  *network.Network
	Gas  network.Gas
	Cfg  Config
	Kern kernel.Kernel

	Time      float64
	StepCount int
	Warnings  *Collector

	// JunctionFlows maps node ID to the branch flows of the last step.
	JunctionFlows map[string][]BranchFlow

	traffic  []*sources.TrafficForces
	jets     []*sources.JetFanForces
	fanNodes map[*network.Node]*network.Fan
	scratch  map[*network.Segment]*segScratch

	// BoundaryTrace, when set, receives every iterate of the portal
	// fixed-point solves. Debug hook for the documented large-loss
	// non-convergence of reservoir portals.
	BoundaryTrace func(segID string, end network.SegmentEnd, iter int, c, w float64)

	angledFallbackSeen map[string]bool
}

// New validates the network, sizes the cells and prepares a run.
func New(net *network.Network, cfg Config) (*Simulation, error) {
	if err := net.Validate(); err != nil {
		return nil, errors.Wrap(err, "network rejected")
	}
	if cfg.Dt <= 0 || cfg.FinalTime <= 0 {
		return nil, errors.New("timestep and final time must be positive")
	}
	if cfg.StabilityMargin <= 0 {
		cfg.StabilityMargin = 1.1
	}
	if cfg.ThermoEvery <= 0 {
		cfg.ThermoEvery = 10
	}
	kern, err := kernel.Select(cfg.KernelName)
	if err != nil {
		return nil, err
	}
	if err := net.Discretize(cfg.Dt, cfg.MaxVelocity*cfg.StabilityMargin); err != nil {
		return nil, err
	}
	s := &Simulation{
		Net:                net,
		Gas:                net.Gas,
		Cfg:                cfg,
		Kern:               kern,
		Warnings:           NewCollector(cfg.Logger),
		JunctionFlows:      make(map[string][]BranchFlow),
		fanNodes:           make(map[*network.Node]*network.Fan),
		scratch:            make(map[*network.Segment]*segScratch),
		angledFallbackSeen: make(map[string]bool),
	}
	for _, f := range net.Fans {
		s.fanNodes[f.Node] = f
	}
	for _, seg := range net.Segments {
		n := len(seg.Cells)
		s.scratch[seg] = &segScratch{
			alpha: make([]float64, n), beta: make([]float64, n),
			aNew: make([]float64, n), bNew: make([]float64, n),
			uNew: make([]float64, n), cNew: make([]float64, n),
			uOld: make([]float64, n), cOld: make([]float64, n),
			src: make([]float64, n),
		}
	}
	s.refreshSources()
	return s, nil
}

// refreshSources rebuilds the spatial distribution of traffic and jet-fan
// forces. This is the slow, thermodynamic-cadence part of the cycle.
func (s *Simulation) refreshSources() {
	s.traffic = s.traffic[:0]
	for _, tb := range s.Net.Traffic {
		s.traffic = append(s.traffic, sources.NewTrafficForces(tb))
	}
	s.jets = s.jets[:0]
	for _, jf := range s.Net.JetFans {
		s.jets = append(s.jets, sources.NewJetFanForces(jf))
	}
}

// Run advances to the configured final time, calling observe (when non-nil)
// after every completed step. A fatal error unwinds immediately; recoverable
// solver trouble lands in Warnings and the run continues.
func (s *Simulation) Run(observe func(*Simulation)) error {
	for s.Time < s.Cfg.FinalTime-1e-12 {
		if err := s.Step(); err != nil {
			return err
		}
		if observe != nil {
			observe(s)
		}
	}
	if n := s.Warnings.Count(); n > 0 {
		logger := s.Warnings.logger
		logger.WithField("warnings", n).Warn("run finished with solver warnings")
	}
	return nil
}

// Step advances the whole network by one timestep.
func (s *Simulation) Step() error {
	if s.StepCount%s.Cfg.ThermoEvery == 0 {
		s.refreshSources()
	}
	s.accumulateSources()
	for _, seg := range s.Net.Segments {
		if err := s.sweepInterior(seg); err != nil {
			return err
		}
	}
	if err := s.resolveBoundaries(); err != nil {
		return err
	}
	if err := s.resolveJunctions(); err != nil {
		return err
	}
	s.resolveFans()
	s.commit()
	s.Time += s.Cfg.Dt
	s.StepCount++
	return nil
}

// accumulateSources zeroes and refills every gridpoint's body-force slot:
// friction, grade, traffic and jet fans.
func (s *Simulation) accumulateSources() {
	const g = 9.80665
	for _, seg := range s.Net.Segments {
		sc := s.scratch[seg]
		for i := range sc.src {
			sc.src[i] = 0
			sc.uOld[i] = seg.Cells[i].U
			sc.cOld[i] = seg.Cells[i].C
		}
		if s.Cfg.FrictionModel == network.FrictionFixed {
			s.Kern.QuadraticDrag(sc.uOld, -seg.FixedFactor/(2*seg.HydraulicDiameter()), sc.src)
		} else {
			// Re-dependent factors vary per gridpoint, so the friction
			// factor is evaluated per characteristic per cell.
			for i := range sc.src {
				u := sc.uOld[i]
				sc.src[i] += sources.FrictionCoeff(s.Cfg.FrictionModel, seg, u) * u * math.Abs(u)
			}
		}
		if seg.Grade != 0 {
			for i := range sc.src {
				rho := s.Gas.Density(sc.cOld[i])
				sc.src[i] -= g * seg.Grade * (rho - s.Gas.RhoRef) / rho
			}
		}
	}
	for _, tf := range s.traffic {
		tf.Accumulate(s.scratch[tf.Block.Seg].src)
	}
	for _, jff := range s.jets {
		jff.Accumulate(s.scratch[jff.Fan.Seg].src, s.Gas, s.Time)
	}
	// Source accumulators mirror onto the cells for inspection.
	for _, seg := range s.Net.Segments {
		sc := s.scratch[seg]
		for i := range seg.Cells {
			seg.Cells[i].Src = sc.src[i]
		}
	}
}

// commit publishes the new-step state onto the cells in one pass.
func (s *Simulation) commit() {
	for _, seg := range s.Net.Segments {
		sc := s.scratch[seg]
		for i := range seg.Cells {
			seg.Cells[i].U = sc.uNew[i]
			seg.Cells[i].C = sc.cNew[i]
		}
	}
}

// UpdateTraffic replaces the network's traffic blocks mid-run; the spatial
// distribution is re-resolved on the next slow-cadence refresh.
func (s *Simulation) UpdateTraffic(blocks []*network.TrafficBlock) {
	s.Net.Traffic = blocks
}
