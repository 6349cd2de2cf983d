package aline

import (
	"math"
	"testing"
)

func TestRunCruiseUsesQueuedTargetVerbatim(t *testing.T) {
	m := testMachine()
	bf := &Buffer{
		Target:        []float64{100, 0, 0},
		Length:        100,
		EndVelocity:   200,
		MoveType:      MoveCruise,
		Replannable:   true,
	}
	status := runCruise(m, bf)
	if status != StatusOK {
		t.Fatalf("runCruise = %v, want OK", status)
	}
	if bf.Replannable {
		t.Fatal("runCruise must clear Replannable once it starts running")
	}
	if !equalVec(m.mr.position, bf.Target) {
		t.Fatalf("runtime position = %v, want the queued target %v verbatim", m.mr.position, bf.Target)
	}
}

func TestRunCruiseDegenerateSkipsEmission(t *testing.T) {
	m := testMachine()
	bf := &Buffer{Target: []float64{0, 0, 0}, Length: 0, EndVelocity: 0, MoveType: MoveCruise}
	if status := runCruise(m, bf); status != StatusOK {
		t.Fatalf("runCruise(degenerate) = %v, want OK", status)
	}
	q := m.Queue.(*ReferenceMotorQueue)
	if len(q.Lines) != 0 {
		t.Fatal("a degenerate cruise region should emit no segment")
	}
}

func TestRunAccelReachesTargetExactly(t *testing.T) {
	m := testMachine()
	bf := &Buffer{
		Target:        []float64{100, 0, 0},
		UnitVec:       []float64{1, 0, 0},
		Length:        100,
		Time:          1,
		StartVelocity: 0,
		EndVelocity:   200,
		MoveType:      MoveAccel,
		MoveState:     StateNew,
		Replannable:   true,
	}
	status := drainRun(runAccel, m, bf, 10000)
	if status != StatusOK {
		t.Fatalf("runAccel never reached OK: last status %v", status)
	}
	if d := AxisVectorLength(m.mr.position, bf.Target); d > 1e-6 {
		t.Fatalf("final runtime position off target by %v", d)
	}
	if bf.Replannable {
		t.Fatal("runAccel must clear Replannable once it starts running")
	}
}

func TestRunDecelReachesTargetExactly(t *testing.T) {
	m := testMachine()
	bf := &Buffer{
		Target:        []float64{100, 0, 0},
		UnitVec:       []float64{1, 0, 0},
		Length:        100,
		Time:          1,
		StartVelocity: 200,
		EndVelocity:   0,
		MoveType:      MoveDecel,
		MoveState:     StateNew,
		Replannable:   true,
	}
	status := drainRun(runDecel, m, bf, 10000)
	if status != StatusOK {
		t.Fatalf("runDecel never reached OK: last status %v", status)
	}
	if d := AxisVectorLength(m.mr.position, bf.Target); d > 1e-6 {
		t.Fatalf("final runtime position off target by %v", d)
	}
}

func TestRunAccelTooShortSkips(t *testing.T) {
	m := testMachine()
	bf := &Buffer{
		Target:    []float64{0.0001, 0, 0},
		UnitVec:   []float64{1, 0, 0},
		Length:    m.Cfg.MinLineLength / 2,
		MoveType:  MoveAccel,
		MoveState: StateNew,
	}
	if status := runAccel(m, bf); status != StatusOK {
		t.Fatalf("runAccel(sub-minimum length) = %v, want immediate OK", status)
	}
}

// drainRun repeatedly invokes fn until it returns something other than
// EAGAIN or the call budget is exhausted.
func drainRun(fn runFunc, m *Machine, bf *Buffer, budget int) Status {
	var status Status
	for i := 0; i < budget; i++ {
		status = fn(m, bf)
		if status != StatusEAGAIN {
			return status
		}
	}
	return status
}

func equalVec(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-6 {
			return false
		}
	}
	return true
}
