// Arc / dwell / stop runtimes (C8): chord-approximate an arc into line
// segments. Dwell and stop/start/end are handled in dispatcher.go since
// they are single-shot and need no per-segment state.
//
// Grounded on planner.c's _mp_run_arc().
package aline

import "math"

func runArc(m *Machine, bf *Buffer) Status {
	if !m.Queue.Ready() {
		return StatusEAGAIN
	}

	if bf.MoveState == StateNew {
		segments := math.Ceil(bf.Length / m.Cfg.MinSegmentLen)
		bf.segmentCount = int(segments)
		bf.segmentTheta = bf.Arc.AngularTravel / segments
		bf.segmentLength = bf.Arc.LinearTravel / segments
		bf.segmentTime = bf.Time / segments
		bf.center1 = m.mr.position[bf.Arc.Axis1] - math.Sin(bf.Arc.Theta)*bf.Arc.Radius
		bf.center2 = m.mr.position[bf.Arc.Axis2] - math.Cos(bf.Arc.Theta)*bf.Arc.Radius
		bf.MoveState = StateRunning1
	}

	bf.Arc.Theta += bf.segmentTheta
	target := make([]float64, len(bf.Target))
	copy(target, m.mr.position)
	target[bf.Arc.Axis1] = bf.center1 + math.Sin(bf.Arc.Theta)*bf.Arc.Radius
	target[bf.Arc.Axis2] = bf.center2 + math.Cos(bf.Arc.Theta)*bf.Arc.Radius
	target[bf.Arc.AxisLinear] = m.mr.position[bf.Arc.AxisLinear] + bf.segmentLength

	travel := make([]float64, len(target))
	for i := range travel {
		travel[i] = target[i] - m.mr.position[i]
	}
	usec := uSecMinutes(bf.segmentTime)
	steps := m.Kin.Convert(travel, usec)
	m.Queue.QueueLine(steps, usec)
	copy(m.mr.position, target)

	bf.segmentCount--
	if bf.segmentCount > 0 {
		return StatusEAGAIN
	}

	// Stamp the end-tangent unit vector: the direction of travel at the
	// final theta, i.e. d/dtheta of (sin, cos) signed by the direction of
	// rotation. SubmitAline does not read it (an aline behind an arc takes
	// the arc's EndVelocity with no cornering factor), and Step's
	// FinalizeRun clears the buffer as soon as this returns.
	sign := 1.0
	if bf.Arc.AngularTravel < 0 {
		sign = -1
	}
	ux, uy := math.Cos(bf.Arc.Theta)*sign, -math.Sin(bf.Arc.Theta)*sign
	for i := range bf.UnitVec {
		bf.UnitVec[i] = 0
	}
	if bf.Arc.Axis1 < len(bf.UnitVec) {
		bf.UnitVec[bf.Arc.Axis1] = ux
	}
	if bf.Arc.Axis2 < len(bf.UnitVec) {
		bf.UnitVec[bf.Arc.Axis2] = uy
	}
	return StatusOK
}
