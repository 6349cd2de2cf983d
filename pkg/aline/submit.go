// Kinematic front-ends (C3): submit_line, submit_arc, submit_dwell,
// submit_stop/start/end, set_position, submit_aline. These validate and
// populate buffers, reserving from the pool (C1) and, for alines, invoking
// the region solver (C4) and backplanner (C5).
//
// Grounded on planner.c's mp_line/mp_arc/mp_dwell/mp_queued_stop/
// mp_queued_start/mp_queued_end/mp_aline.
package aline

import (
	"math"

	"aline-planner/pkg/errors"
)

// SubmitLine queues a simple (no accel/decel) line move.
func (m *Machine) SubmitLine(target []float64, minutes float64) (Status, error) {
	if minutes < m.Cfg.Epsilon {
		return StatusZeroLengthMove, nil
	}
	bf := m.Pool.Reserve()
	if bf == nil {
		return StatusBufferFullFatal, errors.PlannerBufferFullError("submit_line")
	}
	bf.Time = minutes
	copy(bf.Target, target)
	bf.Length = AxisVectorLength(target, m.mm.position)
	if bf.Length < m.Cfg.MinLineLength {
		m.Pool.Release()
		return StatusZeroLengthMove, nil
	}
	bf.RequestVelocity = bf.Length / bf.Time
	m.Pool.Commit(MoveLine)
	copy(m.mm.position, bf.Target)
	m.Wake()
	return StatusOK, nil
}

// SubmitArc queues a helical/arc move; arcs bypass backplanning entirely
// (Non-goals, §1).
func (m *Machine) SubmitArc(target []float64, i, j, k, theta, radius, angularTravel, linearTravel float64, axis1, axis2, axisLinear int, minutes float64) (Status, error) {
	bf := m.Pool.Reserve()
	if bf == nil {
		return StatusBufferFullFatal, errors.PlannerBufferFullError("submit_arc")
	}
	length := math.Hypot(angularTravel*radius, math.Abs(linearTravel))
	if length < m.Cfg.MinSegmentLen {
		m.Pool.Release()
		return StatusZeroLengthMove, nil
	}
	copy(bf.Target, target)
	bf.Time = minutes
	bf.Length = length
	bf.Arc = ArcData{
		Theta:         theta,
		Radius:        radius,
		AngularTravel: angularTravel,
		LinearTravel:  linearTravel,
		Axis1:         axis1,
		Axis2:         axis2,
		AxisLinear:    axisLinear,
	}
	bf.StartVelocity = length / minutes
	bf.EndVelocity = bf.StartVelocity
	// The arc's UnitVec stays zero here. An aline submitted while this arc
	// is still in the ring enters at the arc's EndVelocity with no cornering
	// factor applied and without backplanning (see SubmitAline). runArc
	// stamps an end-tangent vector when the arc completes, but FinalizeRun
	// clears the buffer right after that.
	m.Pool.Commit(MoveArc)
	copy(m.mm.position, bf.Target)
	m.Wake()
	return StatusOK, nil
}

// SubmitDwell queues a timed pause.
func (m *Machine) SubmitDwell(seconds float64) (Status, error) {
	bf := m.Pool.Reserve()
	if bf == nil {
		return StatusBufferFullFatal, errors.PlannerBufferFullError("submit_dwell")
	}
	bf.Time = seconds
	m.Pool.Commit(MoveDwell)
	m.Wake()
	return StatusOK, nil
}

// MarkerResult carries the marker's move type and, for End markers, whether
// the caller should additionally reset canonical-machine defaults. The
// planner itself only ever emits the marker (spec.md §4.8's third Open
// Question / §9's mp_queued_end note).
type MarkerResult struct {
	MoveType      MoveType
	ResetDefaults bool
}

func (m *Machine) submitMarker(t MoveType) (Status, MarkerResult, error) {
	bf := m.Pool.Reserve()
	if bf == nil {
		return StatusBufferFullFatal, MarkerResult{}, errors.PlannerBufferFullError("submit_marker")
	}
	m.Pool.Commit(t)
	m.Wake()
	return StatusOK, MarkerResult{MoveType: t, ResetDefaults: t == MoveEnd}, nil
}

func (m *Machine) SubmitStop() (Status, MarkerResult, error)  { return m.submitMarker(MoveStop) }
func (m *Machine) SubmitStart() (Status, MarkerResult, error) { return m.submitMarker(MoveStart) }
func (m *Machine) SubmitEnd() (Status, MarkerResult, error)   { return m.submitMarker(MoveEnd) }

func isAlineRegion(t MoveType) bool {
	return t == MoveAccel || t == MoveCruise || t == MoveDecel
}

// moveTypeFor derives a region's move type from its solved length and
// velocities, mirroring planner.c's _mp_get_move_type: a region too short
// to emit is null regardless of its velocities; one whose start and end
// velocities match within epsilon is a cruise; otherwise it is accelerating
// or decelerating depending on which velocity is larger. Called on every
// region write, not just at submit time, since backplanning can turn a
// non-degenerate region into a degenerate one (or change which region is
// the cruise) after the fact.
func moveTypeFor(length, startVelocity, endVelocity float64, cfg Config) MoveType {
	switch {
	case length < cfg.MinLineLength:
		return MoveNull
	case math.Abs(startVelocity-endVelocity) < cfg.Epsilon:
		return MoveCruise
	case startVelocity < endVelocity:
		return MoveAccel
	default:
		return MoveDecel
	}
}

// SubmitAline queues a jerk-limited accelerated line move as three
// head/body/tail regions, replanning earlier queued moves so chains of
// short moves reach their highest feasible cruise velocity.
func (m *Machine) SubmitAline(target []float64, minutes float64) (Status, error) {
	if !m.Pool.HaveFree(3) {
		return StatusBufferFullFatal, errors.PlannerBufferFullError("submit_aline")
	}

	length := AxisVectorLength(target, m.mm.position)
	if length < m.Cfg.MinLineLength {
		return StatusZeroLengthMove, nil
	}
	targetVelocity := length / minutes

	unit := make([]float64, m.Cfg.Axes)
	UnitVector(unit, target, m.mm.position)

	prev := m.Pool.PrevImplicit()
	pathMode := PathContinuous
	if m.Canon != nil {
		pathMode = m.Canon.PathControlMode()
	}

	var initialVelocityReq float64
	skipBackplan := false
	exactStop := pathMode == PathExactStop

	switch {
	case prev.MoveType == MoveArc && prev.State != BufferEmpty:
		initialVelocityReq = prev.EndVelocity
		skipBackplan = true
	case !isAlineRegion(prev.MoveType) || prev.State == BufferEmpty || (prev.State == BufferRunning && !prev.Replannable):
		exactStop = true
		initialVelocityReq = 0
	default:
		initialVelocityReq = prev.RequestVelocity * CorneringFactor(prev.UnitVec, unit)
		if initialVelocityReq > targetVelocity {
			initialVelocityReq = targetVelocity
		}
	}

	plan := &RegionPlan{L: length, Vir: initialVelocityReq, Vt: targetVelocity, Vf: 0}
	_ = m.Cfg.solveRegions(plan, func(msg string) { m.trap(errors.PlannerSolverError(msg), nil) })
	if plan.Regions == 0 {
		return StatusZeroLengthMove, nil
	}

	head, body, tail, _ := m.Pool.ReserveAline()
	m.fillAlineBuffers(head, body, tail, plan, target, unit)
	head.RequestVelocity = initialVelocityReq
	body.RequestVelocity = targetVelocity
	tail.RequestVelocity = targetVelocity

	m.Pool.Commit(moveTypeFor(head.Length, head.StartVelocity, head.EndVelocity, m.Cfg))
	m.Pool.Commit(moveTypeFor(body.Length, body.StartVelocity, body.EndVelocity, m.Cfg))
	m.Pool.Commit(moveTypeFor(tail.Length, tail.StartVelocity, tail.EndVelocity, m.Cfg))
	copy(m.mm.position, target)
	m.Wake()

	if exactStop {
		m.forceExactStop(prev)
	}
	if !skipBackplan {
		m.backplan(tail)
	}
	return StatusOK, nil
}

// fillAlineBuffers writes the solved head/body/tail lengths, velocities,
// and (for head/tail, which share the move's direction) the unit vector
// into the three reserved buffers.
func (m *Machine) fillAlineBuffers(head, body, tail *Buffer, plan *RegionPlan, target, unit []float64) {
	copy(head.Target, target)
	copy(body.Target, target)
	copy(tail.Target, target)
	copy(head.UnitVec, unit)
	copy(body.UnitVec, unit)
	copy(tail.UnitVec, unit)

	head.Length, head.StartVelocity, head.EndVelocity = plan.H, plan.Vir, plan.Vi
	body.Length, body.StartVelocity, body.EndVelocity = plan.B, plan.Vi, plan.Vc
	tail.Length, tail.StartVelocity, tail.EndVelocity = plan.T, plan.Vc, plan.Ve

	head.Replannable, body.Replannable, tail.Replannable = true, true, true
}

// forceExactStop immediately retires the predecessor's whole triple (if it
// is itself an aline region) to a zero-velocity join, per spec.md §4.5's
// exact-stop non-replannable condition. backplan()'s replannable gate is
// checked against a triple's head buffer, so all three regions must be
// marked non-replannable here or the very backplan() call that follows
// would recompute this triple's tail right back to a nonzero exit.
func (m *Machine) forceExactStop(prev *Buffer) {
	if !isAlineRegion(prev.MoveType) {
		return
	}
	prev.EndVelocity = 0
	body := prev.pv
	head := body.pv
	head.Replannable = false
	body.Replannable = false
	prev.Replannable = false
}
