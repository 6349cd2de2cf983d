// Backplanner (C5): walks queued moves backward from a just-submitted
// aline, raising earlier moves' cruise velocities so chains of short moves
// reach their highest feasible speed while still guaranteeing a safe stop
// at the end of the chain.
//
// Grounded on the two-pass structure spec.md §4.5 distills from planner.c's
// mp_aline() backward-replanning loop (TinyG's source does this inline
// rather than as a named function; this package gives it its own file).
package aline

import (
	"math"

	"aline-planner/pkg/errors"
)

// prevTripleHead returns the head buffer of the aline triple immediately
// before h's triple, walking three pv links back (tail -> body -> head).
func prevTripleHead(h *Buffer) *Buffer {
	return h.pv.pv.pv
}

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// backplan replans the chain of replannable predecessor alines following a
// just-queued aline whose tail buffer is mTail.
func (m *Machine) backplan(mTail *Buffer) {
	cfg := m.Cfg
	mHead := mTail.pv.pv
	mBody := mTail.pv

	// Pass 1: set braking velocity. Walk backwards through contiguous
	// replannable triples, accumulating chain length; cap each triple's
	// requested entry velocity at vel(0, L_chain).
	lChain := mHead.Length + mBody.Length + mTail.Length
	depth := 0
	for p := prevTripleHead(mHead); p != nil && isAlineRegion(p.MoveType) && p.Replannable && depth < cfg.MaxLookbackDepth; p = prevTripleHead(p) {
		pBody, pTail := p.nx, p.nx.nx
		lChain += p.Length + pBody.Length + pTail.Length
		capV := Vel(0, lChain, cfg.LinearJerkMax)
		if capV < p.RequestVelocity {
			p.RequestVelocity = capV
		}
		depth++
	}
	if depth >= cfg.MaxLookbackDepth {
		m.trap(errors.PlannerBackplanError("lookback depth exceeded, stopped walking"), nil)
	}

	// Pass 2: recompute. Reconstruct each previous triple's regions using
	// the (possibly capped) requested entry velocity and the downstream
	// move's achieved initial velocity as its exit target, then shuffle
	// the downstream reference back one triple and repeat.
	down := mHead
	depth = 0
	for p := prevTripleHead(mHead); p != nil && isAlineRegion(p.MoveType) && p.Replannable && depth < cfg.MaxLookbackDepth; p = prevTripleHead(p) {
		pBody, pTail := p.nx, p.nx.nx

		plan := &RegionPlan{
			L:   p.Length + pBody.Length + pTail.Length,
			Vir: p.RequestVelocity,
			Vt:  pBody.RequestVelocity,
			Vf:  down.StartVelocity,
		}
		_ = cfg.solveRegions(plan, func(msg string) { m.trap(errors.PlannerSolverError(msg), nil) })

		p.Length, p.StartVelocity, p.EndVelocity = plan.H, plan.Vir, plan.Vi
		pBody.Length, pBody.StartVelocity, pBody.EndVelocity = plan.B, plan.Vi, plan.Vc
		pTail.Length, pTail.StartVelocity, pTail.EndVelocity = plan.T, plan.Vc, plan.Ve

		// A rewrite can turn a non-degenerate region degenerate (or move
		// which region is the cruise one), so move_type must be re-derived
		// here exactly as it was at submit time, not left as whatever it
		// was tagged before this pass.
		p.MoveType = moveTypeFor(p.Length, p.StartVelocity, p.EndVelocity, cfg)
		pBody.MoveType = moveTypeFor(pBody.Length, pBody.StartVelocity, pBody.EndVelocity, cfg)
		pTail.MoveType = moveTypeFor(pTail.Length, pTail.StartVelocity, pTail.EndVelocity, cfg)

		optimallyPlanned := approxEqual(p.StartVelocity, p.RequestVelocity, cfg.Epsilon) &&
			approxEqual(pBody.StartVelocity, pBody.RequestVelocity, cfg.Epsilon) &&
			approxEqual(pTail.EndVelocity, down.RequestVelocity, cfg.Epsilon)

		if optimallyPlanned {
			p.Replannable, pBody.Replannable, pTail.Replannable = false, false, false
			break
		}

		// A region already past the head-running state may not have its
		// body/tail mutated; its head may still be revised iff replannable.
		if p.State == BufferRunning && p.MoveState != StateNew {
			break
		}

		down = p
		depth++
	}
}
