package moc

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ventworks/ductflow/network"
)

// JunctionSolution is the resolved state of one node for one timestep, in
// the into-junction frame (W[k] positive flowing from branch k into the
// node).
type JunctionSolution struct {
	W, C       []float64
	PJ         float64 // notional junction total pressure [Pa]
	Converged  bool
	Iterations int
}

// junctionStrategy solves one branch count. The equation system's size and
// the admissible flow sign patterns differ per count, so each count carries
// its own strategy; all of them must agree under any relabeling or
// orientation flip of the branches.
type junctionStrategy interface {
	Ways() int
	Solve(s *Simulation, n *network.Node, K []float64) JunctionSolution
}

// strategyFor dispatches on branch count. Counts outside 2..6 are rejected
// at validation, before the first timestep.
func strategyFor(ways int) junctionStrategy {
	switch ways {
	case 2:
		return twoWay{}
	case 3:
		return threeWay{}
	case 4:
		return fourWay{}
	case 5:
		return fiveWay{}
	case 6:
		return sixWay{}
	}
	return nil
}

type (
	twoWay   struct{}
	threeWay struct{}
	fourWay  struct{}
	fiveWay  struct{}
	sixWay   struct{}
)

func (twoWay) Ways() int   { return 2 }
func (threeWay) Ways() int { return 3 }
func (fourWay) Ways() int  { return 4 }
func (fiveWay) Ways() int  { return 5 }
func (sixWay) Ways() int   { return 6 }

// Straight-through nodes see little pressure search range; wide tees and
// crossovers need more room and more budget.
func (twoWay) Solve(s *Simulation, n *network.Node, K []float64) JunctionSolution {
	return solveNode(s, n, K, 0.5, 80)
}

func (threeWay) Solve(s *Simulation, n *network.Node, K []float64) JunctionSolution {
	return solveNode(s, n, K, 0.8, 100)
}

func (fourWay) Solve(s *Simulation, n *network.Node, K []float64) JunctionSolution {
	return solveNode(s, n, K, 1.0, 100)
}

func (fiveWay) Solve(s *Simulation, n *network.Node, K []float64) JunctionSolution {
	return solveNode(s, n, K, 1.2, 120)
}

func (sixWay) Solve(s *Simulation, n *network.Node, K []float64) JunctionSolution {
	return solveNode(s, n, K, 1.5, 120)
}

// resolveJunctions gathers the arriving characteristic of every branch and
// runs the per-count strategy. Fan nodes are handled by the fan solver.
func (s *Simulation) resolveJunctions() error {
	for _, node := range s.Net.Nodes {
		if _, isFan := s.fanNodes[node]; isFan {
			continue
		}
		K := make([]float64, node.Ways())
		for j, b := range node.Branches {
			K[j] = s.endInvariant(b.Seg, b.End)
		}
		sol := strategyFor(node.Ways()).Solve(s, node, K)
		if !sol.Converged {
			s.Warnings.Add(Warning{
				Component:  "junction",
				ID:         node.ID,
				Time:       s.Time,
				Iterations: sol.Iterations,
				Detail:     "junction pressure balance exhausted its budget; using last iterate",
			})
		}
		flows := make([]BranchFlow, node.Ways())
		for j, b := range node.Branches {
			s.setEndState(b.Seg, b.End, sol.W[j], sol.C[j])
			flows[j] = BranchFlow{
				SegID:    b.Seg.ID,
				End:      b.End,
				MassFlow: s.Gas.Density(sol.C[j]) * b.Area() * sol.W[j],
				Velocity: sol.W[j],
			}
		}
		s.JunctionFlows[node.ID] = flows
	}
	return nil
}

// solveNode finds the junction total pressure PJ at which the signed mass
// flows balance. The mass residual is monotone in PJ (raising the junction
// pressure pushes every branch toward outflow), so the outer loop brackets
// and bisects PJ; for each trial every branch resolves its own velocity and
// celerity from its arriving characteristic and its own directional loss
// term. span widens the initial pressure bracket as a fraction of ambient.
func solveNode(s *Simulation, n *network.Node, K []float64, span float64, maxIter int) JunctionSolution {
	var (
		g    = s.Gas
		ways = n.Ways()
		sol  = JunctionSolution{W: make([]float64, ways), C: make([]float64, ways)}
	)
	massAt := func(pj float64) float64 {
		var m float64
		for j, b := range n.Branches {
			w, c := solveBranch(s, n, b, K[j], pj)
			sol.W[j], sol.C[j] = w, c
			m += g.Density(c) * b.Area() * w
		}
		return m
	}
	var (
		lo, hi = g.PRef * (1 - span), g.PRef * (1 + span)
		mTol   = 1e-10 * g.RhoRef * g.SoundSpeed() * totalArea(n)
	)
	if lo <= 0 {
		lo = 0.05 * g.PRef
	}
	mLo, mHi := massAt(lo), massAt(hi)
	it := 2
	// Low junction pressure pulls flow in (positive residual); high pushes
	// it out. Grow the bracket if the configured span did not straddle zero.
	for grow := 0; mLo < 0 || mHi > 0; grow++ {
		if grow >= 8 {
			break
		}
		lo *= 0.5
		hi *= 1.5
		mLo, mHi = massAt(lo), massAt(hi)
		it += 2
	}
	var m float64
	for ; it < maxIter; it++ {
		pj := 0.5 * (lo + hi)
		m = massAt(pj)
		sol.PJ = pj
		if math.Abs(m) < mTol {
			sol.Converged = true
			sol.Iterations = it + 1
			return sol
		}
		if m > 0 {
			lo = pj
		} else {
			hi = pj
		}
	}
	sol.Iterations = maxIter
	sol.Converged = math.Abs(m) < 1e3*mTol
	return sol
}

// solveBranch resolves one branch end against a trial junction total
// pressure: the arriving characteristic c + (gamma-1)/2*w = K couples w and
// c, and the total pressure at the branch differs from PJ by the branch's
// own directional quadratic loss. The relation is monotone in w for loss
// coefficients of practical size, so it bisects on w.
func solveBranch(s *Simulation, n *network.Node, b *network.BranchEnd, K, pj float64) (w, c float64) {
	var (
		g    = s.Gas
		k    = g.InvariantCoeff()
		cMax = 2 * g.SoundSpeed()
	)
	resid := func(w float64) float64 {
		c := K - k*w
		rho := g.Density(c)
		p := g.Pressure(c)
		dyn := 0.5 * rho * w * w
		zeta := s.branchZeta(n, b, w)
		if w >= 0 {
			return p + (1-zeta)*dyn - pj
		}
		return p + (1+zeta)*dyn - pj
	}
	var (
		wLo = (K - cMax) / k  // strong outflow, high celerity
		wHi = (K - 1e-3) / k  // inflow to near-vacuum celerity
	)
	rLo := resid(wLo)
	rHi := resid(wHi)
	if rLo < 0 { // junction pressure above anything the branch can deliver
		w = wLo
	} else if rHi > 0 {
		w = wHi
	} else {
		for i := 0; i < 60; i++ {
			w = 0.5 * (wLo + wHi)
			if resid(w) > 0 {
				wLo = w
			} else {
				wHi = w
			}
		}
		w = 0.5 * (wLo + wHi)
	}
	c = K - k*w
	return w, c
}

// branchZeta picks the branch's directional loss coefficient, with the
// angled-junction correlation layered on only when the node explicitly asks
// for it. An Angled aero type without UseAngledLosses keeps the symmetric
// model; that long-standing fallback is preserved and reported once per node.
func (s *Simulation) branchZeta(n *network.Node, b *network.BranchEnd, w float64) float64 {
	zeta := b.ZetaOut()
	if w >= 0 {
		zeta = b.ZetaIn()
	}
	if n.Aero != network.AeroAngled {
		return zeta
	}
	if !n.UseAngledLosses {
		if !s.angledFallbackSeen[n.ID] {
			s.angledFallbackSeen[n.ID] = true
			s.Warnings.logger.WithField("node", n.ID).
				Warn("angled aero type without UseAngledLosses: using symmetric loss model")
		}
		return zeta
	}
	return zeta + angledExtra(b)
}

// angledExtra is the empirical excess loss of an angled branch, a function
// of the branch's own angle and aspect ratio only, which keeps the model
// independent of branch ordering.
func angledExtra(b *network.BranchEnd) float64 {
	ar := b.AspectRatio
	if ar <= 0 {
		ar = 1
	}
	return 1.1 * (1 - math.Cos(b.Angle)) * (1 + 0.25*(ar-1))
}

func totalArea(n *network.Node) float64 {
	var a float64
	for _, b := range n.Branches {
		a += b.Area()
	}
	return a
}

// ResidualNorm assembles the full residual vector of a junction solution --
// per-branch characteristic and pressure relations plus mass conservation --
// and returns its Euclidean norm. Diagnostic companion to the solver, used
// by the regression checks.
func (s *Simulation) ResidualNorm(n *network.Node, K []float64, sol JunctionSolution) float64 {
	var (
		g    = s.Gas
		k    = g.InvariantCoeff()
		ways = n.Ways()
	)
	r := mat.NewVecDense(2*ways+1, nil)
	var m float64
	for j, b := range n.Branches {
		w, c := sol.W[j], sol.C[j]
		rho := g.Density(c)
		p := g.Pressure(c)
		dyn := 0.5 * rho * w * w
		zeta := s.branchZeta(n, b, w)
		sgn := 1.0
		if w < 0 {
			sgn = -1
		}
		r.SetVec(2*j, c+k*w-K[j])
		r.SetVec(2*j+1, (p+dyn-sol.PJ-sgn*zeta*dyn)/g.PRef)
		m += rho * b.Area() * w
	}
	r.SetVec(2*ways, m/(g.RhoRef*g.SoundSpeed()*totalArea(n)))
	return mat.Norm(r, 2)
}
