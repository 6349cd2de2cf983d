// Region solver (C4): given (Vir, Vt, Vf, L) and the configured jerk,
// computes the head/body/tail lengths and the velocities actually achieved.
//
// Grounded on planner.c's mp_aline()/_mp_compute_regions() structure (the HBT
// trial, the single-region fallbacks, and the iterative HT split); the exact
// formulas are taken from spec.md §4.4, which distills the same algorithm.
package aline

import (
	"math"

	"aline-planner/pkg/errors"
)

// RegionPlan is the scratch "planner struct m" of spec.md §4.4/§4.5: the
// requested velocities for a region triple and the lengths/velocities the
// solver actually achieved.
type RegionPlan struct {
	L   float64
	Vir float64 // requested initial velocity
	Vt  float64 // requested target (cruise) velocity
	Vf  float64 // requested final velocity

	H, B, T     float64
	Vi, Vc, Ve  float64 // achieved initial/cruise/final velocities
	Regions     int
}

const maxHTIterations = 100

// solveRegions runs the region solver and fills plan's achieved fields.
// plan.Regions receives the region count (0..3); 0 means the move
// degenerated (too short) and no regions should be queued. The returned
// error is non-nil only when validateRegions had to clamp the split.
func (cfg Config) solveRegions(plan *RegionPlan, logf func(string)) error {
	Jm := cfg.LinearJerkMax
	plan.Vi, plan.Vc, plan.Ve = plan.Vir, plan.Vt, plan.Vf

	if plan.L < cfg.MinLineLength {
		plan.Regions = 0
		return nil
	}

	H := Len(plan.Vir, plan.Vt, Jm)
	T := Len(plan.Vt, plan.Vf, Jm)
	B := plan.L - H - T

	if B > 0 {
		if H > 0 && H < cfg.MinLineLength {
			B += H
			H = 0
		}
		if T > 0 && T < cfg.MinLineLength {
			B += T
			T = 0
		}
		plan.H, plan.B, plan.T = H, B, T
		// Head accelerates all the way to cruise speed and tail decelerates
		// from it; Vi (head->body) and Vc (body's constant speed) are both
		// the cruise velocity, only Ve (body->tail exit) stays Vf.
		plan.Vi, plan.Vc = plan.Vt, plan.Vt
		plan.Regions = 3
		return cfg.validateRegions(plan, logf)
	}

	// Single-region cases. B stays 0; H/T from the HBT trial are the
	// thresholds ("H_trial"/"T_trial") the spec's boundary tests compare L
	// against.
	switch {
	case plan.Vf < plan.Vir && plan.L < T:
		plan.H, plan.B, plan.T = 0, 0, plan.L
		plan.Vi = Vel(plan.Vf, plan.L, Jm)
		plan.Vc = plan.Vi
		plan.Regions = 1
		return cfg.validateRegions(plan, logf)
	case plan.Vf > plan.Vir && plan.L < H:
		plan.H, plan.B, plan.T = plan.L, 0, 0
		plan.Vc = Vel(plan.Vir, plan.L, Jm)
		plan.Vi = plan.Vc
		plan.Ve = plan.Vc
		plan.Vf = plan.Vc
		plan.Regions = 1
		return cfg.validateRegions(plan, logf)
	case math.Abs(plan.Vf-plan.Vir) < cfg.Epsilon && math.Abs(plan.Vf-plan.Vt) < cfg.Epsilon:
		plan.H, plan.B, plan.T = 0, plan.L, 0
		plan.Vi, plan.Vc, plan.Ve = plan.Vir, plan.Vir, plan.Vir
		plan.Regions = 1
		return cfg.validateRegions(plan, logf)
	}

	// HT: no body, iteratively split L between head and tail.
	Vi, Vc := plan.Vir, plan.Vt
	h, t := 0.0, 0.0
	prevB := math.MaxFloat64
	converged := false
	for i := 0; i < maxHTIterations; i++ {
		dVh := math.Abs(Vi - Vc)
		denom := dVh + math.Abs(Vc-plan.Vf)
		if denom == 0 {
			converged = true
			break
		}
		h = plan.L * dVh / denom
		Vc = Vel(Vi, h, Jm)
		h = Len(Vc, Vi, Jm)
		t = Len(Vc, plan.Vf, Jm)
		b := plan.L - h - t
		if math.Abs(prevB-b) < cfg.Epsilon {
			prevB = b
			converged = true
			break
		}
		prevB = b
	}
	if !converged && logf != nil {
		logf("HT split did not converge, clamping residual body to zero")
	}
	if h < cfg.Epsilon {
		h = 0
	}
	if t < cfg.Epsilon {
		t = 0
	}
	plan.H, plan.B, plan.T = h, 0, t
	// The head accelerates from Vi to Vc (h = Len(Vc, Vi)) and the tail
	// leaves from Vc, so both joins around the zero-length body are at Vc.
	plan.Vi, plan.Vc, plan.Ve = Vc, Vc, plan.Vf
	plan.Regions = 2
	return cfg.validateRegions(plan, logf)
}

// validateRegions enforces the edge-case policies of spec.md §4.4: region
// lengths may never sum to more than L by more than a tiny tolerance, and
// negative or non-finite intermediate lengths are a solver bug, logged and
// downgraded to a best-effort result (negative head/tail lengths clamped to
// zero, body cleared, at most two regions) rather than propagated as a
// panic.
func (cfg Config) validateRegions(plan *RegionPlan, logf func(string)) error {
	const tolerance = 0.01
	sum := plan.H + plan.B + plan.T
	bad := plan.H < 0 || plan.B < 0 || plan.T < 0 ||
		math.IsNaN(sum) || math.IsInf(sum, 0) ||
		sum > plan.L+tolerance
	if !bad {
		return nil
	}
	if logf != nil {
		logf("region solver produced an invalid split, clamping to best-effort")
	}
	if plan.H < 0 {
		plan.H = 0
	}
	if plan.T < 0 {
		plan.T = 0
	}
	plan.B = 0
	if plan.Regions > 2 {
		plan.Regions = 2
	}
	return errors.PlannerSolverError("region lengths exceeded move length")
}
