// Package results samples simulation state at a caller-chosen cadence. It
// owns no file format; persistence belongs to the surrounding tooling.
package results

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ventworks/ductflow/moc"
	"github.com/ventworks/ductflow/network"
)

// SegmentField is one segment's sampled state.
type SegmentField struct {
	X, U, Rho, P []float64
}

// Sample is the network state at one sampled instant.
type Sample struct {
	Time      float64
	Segments  map[string]SegmentField
	Fans      map[string]network.DutyPoint
	Junctions map[string][]moc.BranchFlow
}

// Recorder collects samples every Interval seconds of simulated time.
// Interval zero records every step.
type Recorder struct {
	Interval float64
	Samples  []Sample
	next     float64
}

// NewRecorder samples at the given interval.
func NewRecorder(interval float64) *Recorder {
	return &Recorder{Interval: interval}
}

// Observe is the hook handed to Simulation.Run.
func (r *Recorder) Observe(s *moc.Simulation) {
	if s.Time+1e-12 < r.next {
		return
	}
	r.next = s.Time + r.Interval
	r.Samples = append(r.Samples, Snapshot(s))
}

// Snapshot captures the full state now, independent of the cadence.
func Snapshot(s *moc.Simulation) Sample {
	smp := Sample{
		Time:      s.Time,
		Segments:  make(map[string]SegmentField, len(s.Net.Segments)),
		Fans:      make(map[string]network.DutyPoint, len(s.Net.Fans)),
		Junctions: make(map[string][]moc.BranchFlow, len(s.JunctionFlows)),
	}
	for _, seg := range s.Net.Segments {
		f := SegmentField{
			X:   make([]float64, len(seg.Cells)),
			U:   make([]float64, len(seg.Cells)),
			Rho: make([]float64, len(seg.Cells)),
			P:   make([]float64, len(seg.Cells)),
		}
		for i, c := range seg.Cells {
			f.X[i] = c.X
			f.U[i] = c.U
			f.Rho[i] = s.Gas.Density(c.C)
			f.P[i] = s.Gas.Pressure(c.C)
		}
		smp.Segments[seg.ID] = f
	}
	for _, fan := range s.Net.Fans {
		smp.Fans[fan.ID] = fan.Duty
	}
	for id, flows := range s.JunctionFlows {
		cp := make([]moc.BranchFlow, len(flows))
		copy(cp, flows)
		smp.Junctions[id] = cp
	}
	return smp
}

// Summary condenses a run for the log banner.
type Summary struct {
	Steps     int
	FinalTime float64
	UMin      float64
	UMax      float64
	UMean     float64
	Warnings  int
}

// Summarize reduces the last sample plus run counters.
func Summarize(s *moc.Simulation) Summary {
	var all []float64
	for _, seg := range s.Net.Segments {
		for _, c := range seg.Cells {
			all = append(all, c.U)
		}
	}
	sm := Summary{
		Steps:     s.StepCount,
		FinalTime: s.Time,
		Warnings:  s.Warnings.Count(),
	}
	if len(all) > 0 {
		sm.UMin = floats.Min(all)
		sm.UMax = floats.Max(all)
		sm.UMean = stat.Mean(all, nil)
	}
	return sm
}
