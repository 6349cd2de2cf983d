// External interfaces (§6): the downstream motor queue, kinematics step
// converter, stepper async control, and canonical-machine path-control mode.
// These are the only collaborators the planner talks to; a real stepper
// driver, ISR-driven queue, and G-code-derived canonical machine live
// outside this repository and are out of scope (spec §1). The reference
// implementations here exist for tests and the demo cmd/ entrypoint.
package aline

// MotorQueue is the downstream, ISR-driven consumer of emitted segments.
// The planner never blocks on it: Ready() gates every run function, and a
// false Ready must produce StatusEAGAIN without side effects.
type MotorQueue interface {
	Ready() bool
	QueueLine(steps []int64, microseconds uint32)
	QueueDwell(microseconds uint32)
	QueueStops(moveType MoveType)
}

// Kinematics converts a Cartesian millimeter delta into per-motor step
// counts for a segment of the given duration.
type Kinematics interface {
	Convert(deltaMM []float64, microseconds uint32) []int64
}

// StepperControl exposes the async-safe stepper primitives; these may be
// called from an ISR and never touch the buffer pool.
type StepperControl interface {
	StartAsync()
	StopAsync()
	IsBusy() bool
}

// CanonicalMachine supplies the path-control mode in effect for the move
// currently being submitted.
type CanonicalMachine interface {
	PathControlMode() PathControlMode
}

// ReferenceMotorQueue is an in-memory MotorQueue for tests and demos: it
// reports ready unless NotReadyUntil is positive, and records every emitted
// segment/dwell/stop.
type ReferenceMotorQueue struct {
	Lines  []LineSegment
	Dwells []uint32
	Stops  []MoveType
	NotReadyUntil int // Ready() returns false for this many calls, then true
}

type LineSegment struct {
	Steps        []int64
	Microseconds uint32
}

func (q *ReferenceMotorQueue) Ready() bool {
	if q.NotReadyUntil > 0 {
		q.NotReadyUntil--
		return false
	}
	return true
}

func (q *ReferenceMotorQueue) QueueLine(steps []int64, microseconds uint32) {
	cp := make([]int64, len(steps))
	copy(cp, steps)
	q.Lines = append(q.Lines, LineSegment{Steps: cp, Microseconds: microseconds})
}

func (q *ReferenceMotorQueue) QueueDwell(microseconds uint32) {
	q.Dwells = append(q.Dwells, microseconds)
}

func (q *ReferenceMotorQueue) QueueStops(moveType MoveType) {
	q.Stops = append(q.Stops, moveType)
}

// DirectKinematics maps a Cartesian delta directly onto motors one-to-one
// (stepper_x -> motor 0, stepper_y -> motor 1, stepper_z -> motor 2, ...),
// matching the teacher's CartesianKinematics axis mapping. StepsPerMM scales
// each axis; a nil or too-short slice defaults to 1 step/mm.
type DirectKinematics struct {
	StepsPerMM []float64
}

func (k *DirectKinematics) Convert(deltaMM []float64, microseconds uint32) []int64 {
	steps := make([]int64, len(deltaMM))
	for i, d := range deltaMM {
		spmm := 1.0
		if i < len(k.StepsPerMM) {
			spmm = k.StepsPerMM[i]
		}
		steps[i] = int64(d * spmm)
	}
	return steps
}

// ReferenceStepperControl is a no-op StepperControl for tests.
type ReferenceStepperControl struct {
	busy bool
}

func (s *ReferenceStepperControl) StartAsync() { s.busy = true }
func (s *ReferenceStepperControl) StopAsync()  { s.busy = false }
func (s *ReferenceStepperControl) IsBusy() bool { return s.busy }

// FixedPathControl reports a constant path-control mode.
type FixedPathControl struct {
	Mode PathControlMode
}

func (f FixedPathControl) PathControlMode() PathControlMode { return f.Mode }
