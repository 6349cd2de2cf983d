// Dispatcher (C6): the single cooperative entry point, called repeatedly,
// that picks the run head, routes it through a run-function table keyed by
// move type, and finalizes the buffer back to the pool on completion.
//
// Grounded on planner.c's mp_move_dispatcher()/move_runners[] table.
package aline

import "aline-planner/pkg/errors"

type runFunc func(m *Machine, bf *Buffer) Status

var runTable = map[MoveType]runFunc{
	MoveNull:  runNull,
	MoveAccel: runAccel,
	MoveCruise: runCruise,
	MoveDecel: runDecel,
	MoveLine:  runLine,
	MoveArc:   runArc,
	MoveDwell: runDwell,
	MoveStart: runStops,
	MoveStop:  runStops,
	MoveEnd:   runStops,
}

// Step is the dispatcher's single cooperative entry point.
func (m *Machine) Step() Status {
	bf := m.Pool.RunHead()
	if bf == nil {
		return StatusNOOP
	}

	if bf.MoveState == StateNew {
		m.runFlag = true
		fn, ok := runTable[bf.MoveType]
		if !ok {
			m.trap(errors.PlannerDispatchError("no run function for move type"), nil)
			return StatusErr
		}
		m.currentRun = fn
	}

	status := m.currentRun(m, bf)
	if status == StatusEAGAIN {
		return StatusEAGAIN
	}

	m.runFlag = false
	moveType, startVelocity, endVelocity, length := bf.MoveType, bf.StartVelocity, bf.EndVelocity, bf.Length
	m.Pool.FinalizeRun()
	if m.history != nil {
		m.history.RecordFinalized(moveType, startVelocity, endVelocity, length)
	}
	return status
}

// runNull clears replannable and lets the dispatcher free the buffer.
func runNull(m *Machine, bf *Buffer) Status {
	bf.Replannable = false
	return StatusOK
}

// runStops emits the stop/start/end marker once the motor queue is ready.
func runStops(m *Machine, bf *Buffer) Status {
	if !m.Queue.Ready() {
		return StatusEAGAIN
	}
	m.Queue.QueueStops(bf.MoveType)
	return StatusOK
}

// runDwell times out a dwell by handing it to the motor queue.
func runDwell(m *Machine, bf *Buffer) Status {
	if !m.Queue.Ready() {
		return StatusEAGAIN
	}
	m.Queue.QueueDwell(uSec(bf.Time))
	return StatusOK
}

// uSec converts a duration in seconds (the unit of dwell times) to
// microseconds; see linerun.go's uSecMinutes for the minutes-based
// conversion used by line moves.
func uSec(seconds float64) uint32 {
	return uint32(seconds * 1e6)
}
