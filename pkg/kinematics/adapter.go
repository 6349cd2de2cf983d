package kinematics

import "math"

// RailKinematics narrows a rail-based Kinematics (homing-aware, per-axis
// step distance, endstop-bounded) down to a motion planner's Convert-only
// contract: millimeter delta in, step count out. The embedded Kinematics
// keeps its homing state, endstop checks, and Z speed limiting available to
// callers, but Convert only reads GetRails: it applies none of those checks.
// This type only adds the step-count division the planner needs that
// CartesianKinematics itself has no reason to provide.
type RailKinematics struct {
	Kinematics
}

// NewRailKinematics wraps any Kinematics (typically a *CartesianKinematics)
// for use where a narrower mm-delta-to-steps converter is required.
func NewRailKinematics(k Kinematics) *RailKinematics {
	return &RailKinematics{Kinematics: k}
}

// Convert divides each axis's millimeter delta by that axis rail's step
// distance, rounding to the nearest whole step. An axis with no configured
// rail (or a zero step distance, which would otherwise divide by zero)
// contributes no steps rather than panicking.
func (r *RailKinematics) Convert(deltaMM []float64, microseconds uint32) []int64 {
	rails := r.GetRails()
	steps := make([]int64, len(deltaMM))
	for i, d := range deltaMM {
		if i >= len(rails) || rails[i].StepDist == 0 {
			continue
		}
		steps[i] = int64(math.Round(d / rails[i].StepDist))
	}
	return steps
}
