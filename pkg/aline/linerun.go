// Line runtime (C7): executes the head (accel S-curve), body (cruise), and
// tail (decel S-curve) of an aline as constant-time segments emitted to the
// motor queue, plus the simple (non-aline) line runtime.
//
// Grounded on planner.c's _mp_run_cruise/_mp_run_accel/_mp_run_decel/
// _mp_run_segment/_mp_run_finalize and their exact S-curve formulas, as
// distilled in spec.md §4.7.
package aline

import "math"

// uSecMinutes converts a duration in minutes to microseconds.
func uSecMinutes(minutes float64) uint32 {
	return uint32(minutes * OneMinuteOfMicroseconds)
}

// runLine executes a simple (no accel/decel) line move in one segment.
func runLine(m *Machine, bf *Buffer) Status {
	if !m.Queue.Ready() {
		return StatusEAGAIN
	}
	travel := make([]float64, len(bf.Target))
	for i := range travel {
		travel[i] = bf.Target[i] - m.mr.position[i]
	}
	usec := uSecMinutes(bf.Time)
	steps := m.Kin.Convert(travel, usec)
	m.Queue.QueueLine(steps, usec)
	copy(m.mr.position, bf.Target)
	return StatusOK
}

// runCruise executes the constant-velocity body region. The queued target
// is authoritative (spec.md §9's second Open Question): run_cruise must
// not recompute bf.target from unit_vec*length, which would drift from the
// backplanner's rewritten buffer.
func runCruise(m *Machine, bf *Buffer) Status {
	if !m.Queue.Ready() {
		return StatusEAGAIN
	}
	bf.Replannable = false
	if bf.Length < m.Cfg.MinLineLength || bf.EndVelocity < m.Cfg.Epsilon {
		return StatusOK
	}
	time := bf.Length / bf.EndVelocity
	usec := uSecMinutes(time)
	travel := make([]float64, len(bf.Target))
	for i := range travel {
		travel[i] = bf.Target[i] - m.mr.position[i]
	}
	steps := m.Kin.Convert(travel, usec)
	m.Queue.QueueLine(steps, usec)
	copy(m.mr.position, bf.Target)
	return StatusOK
}

// runSegment emits one constant-time segment of a head/tail S-curve at
// instantaneous velocity v, advancing runtime position.
func runSegment(m *Machine, bf *Buffer, v float64) Status {
	if !m.Queue.Ready() {
		return StatusEAGAIN
	}
	newTarget := make([]float64, len(bf.Target))
	travel := make([]float64, len(bf.Target))
	for i := range newTarget {
		newTarget[i] = m.mr.position[i] + bf.UnitVec[i]*v*bf.segmentTime
		travel[i] = newTarget[i] - m.mr.position[i]
	}
	usec := uSecMinutes(bf.segmentTime)
	steps := m.Kin.Convert(travel, usec)
	m.Queue.QueueLine(steps, usec)
	copy(m.mr.position, newTarget)
	bf.elapsed += bf.segmentTime
	bf.segmentCount--
	if bf.segmentCount > 0 {
		return StatusEAGAIN
	}
	return StatusOK
}

// runFinalize emits one last segment that takes the runtime position
// exactly to the buffer's target, preventing floating-point drift.
func runFinalize(m *Machine, bf *Buffer) Status {
	if !m.Queue.Ready() {
		return StatusEAGAIN
	}
	travel := make([]float64, len(bf.Target))
	residual := 0.0
	for i := range travel {
		travel[i] = bf.Target[i] - m.mr.position[i]
		residual += travel[i] * travel[i]
	}
	residual = math.Sqrt(residual)
	time := 0.0
	if bf.EndVelocity > m.Cfg.Epsilon {
		time = residual / bf.EndVelocity
	}
	usec := uSecMinutes(time)
	steps := m.Kin.Convert(travel, usec)
	m.Queue.QueueLine(steps, usec)
	copy(m.mr.position, bf.Target)
	return StatusOK
}

// runAccel executes the head region: concave first half, convex second
// half, each a sequence of constant-time segments obeying the jerk law.
func runAccel(m *Machine, bf *Buffer) Status {
	if !m.Queue.Ready() {
		return StatusEAGAIN
	}
	switch bf.MoveState {
	case StateNew:
		bf.Replannable = false
		if bf.Length < m.Cfg.MinLineLength {
			return StatusOK
		}
		Vm := (bf.StartVelocity + bf.EndVelocity) / 2
		T := bf.Length / Vm
		Am := T * m.Cfg.LinearJerkMax / 2
		segments := math.Round(math.Round(OneMinuteOfMicroseconds*T/m.Cfg.MinSegmentTime) / 2)
		if segments <= 0 {
			return StatusOK
		}
		bf.segmentTime = T / (2 * segments)
		bf.elapsed = bf.segmentTime / 2
		bf.segmentCount = int(segments)
		bf.midVelocity = Vm
		bf.midAccel = Am
		bf.MoveState = StateRunning1
		fallthrough
	case StateRunning1:
		v := bf.StartVelocity + (m.Cfg.LinearJerkMax/2)*bf.elapsed*bf.elapsed
		status := runSegment(m, bf, v)
		if status == StatusEAGAIN {
			return StatusEAGAIN
		}
		bf.segmentCount = int(math.Round((bf.Length / bf.midVelocity) / (2 * bf.segmentTime)))
		bf.elapsed = bf.segmentTime / 2
		bf.MoveState = StateRunning2
		return StatusEAGAIN
	case StateRunning2:
		if bf.segmentCount <= 1 {
			bf.MoveState = StateFinalize
			return runFinalize(m, bf)
		}
		v := bf.midVelocity + bf.elapsed*bf.midAccel - (m.Cfg.LinearJerkMax/2)*bf.elapsed*bf.elapsed
		status := runSegment(m, bf, v)
		if status == StatusEAGAIN {
			return StatusEAGAIN
		}
		bf.MoveState = StateFinalize
		return runFinalize(m, bf)
	default:
		return runFinalize(m, bf)
	}
}

// runDecel executes the tail region with the accel formulas' signs
// inverted: convex first half, concave second half.
func runDecel(m *Machine, bf *Buffer) Status {
	if !m.Queue.Ready() {
		return StatusEAGAIN
	}
	switch bf.MoveState {
	case StateNew:
		bf.Replannable = false
		if bf.Length < m.Cfg.MinLineLength {
			return StatusOK
		}
		Vm := (bf.StartVelocity + bf.EndVelocity) / 2
		T := bf.Length / Vm
		Am := T * m.Cfg.LinearJerkMax / 2
		segments := math.Round(math.Round(OneMinuteOfMicroseconds*T/m.Cfg.MinSegmentTime) / 2)
		if segments <= 0 {
			return StatusOK
		}
		bf.segmentTime = T / (2 * segments)
		bf.elapsed = bf.segmentTime / 2
		bf.segmentCount = int(segments)
		bf.midVelocity = Vm
		bf.midAccel = Am
		bf.MoveState = StateRunning1
		fallthrough
	case StateRunning1:
		v := bf.StartVelocity - (m.Cfg.LinearJerkMax/2)*bf.elapsed*bf.elapsed
		status := runSegment(m, bf, v)
		if status == StatusEAGAIN {
			return StatusEAGAIN
		}
		bf.segmentCount = int(math.Round((bf.Length / bf.midVelocity) / (2 * bf.segmentTime)))
		bf.elapsed = bf.segmentTime / 2
		bf.MoveState = StateRunning2
		return StatusEAGAIN
	case StateRunning2:
		if bf.segmentCount <= 1 {
			bf.MoveState = StateFinalize
			return runFinalize(m, bf)
		}
		v := bf.midVelocity - bf.elapsed*bf.midAccel + (m.Cfg.LinearJerkMax/2)*bf.elapsed*bf.elapsed
		status := runSegment(m, bf, v)
		if status == StatusEAGAIN {
			return StatusEAGAIN
		}
		bf.MoveState = StateFinalize
		return runFinalize(m, bf)
	default:
		return runFinalize(m, bf)
	}
}
