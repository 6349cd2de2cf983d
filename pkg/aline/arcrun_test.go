package aline

import (
	"math"
	"testing"
)

func TestRunArcCompletesAndStampsTangent(t *testing.T) {
	m := testMachine()
	radius := 10.0
	bf := &Buffer{
		Target:  []float64{0, 0, 0},
		UnitVec: make([]float64, 3),
		Length:  radius * math.Pi / 2, // quarter circle
		Time:    1,
		Arc: ArcData{
			Theta:         0,
			Radius:        radius,
			AngularTravel: math.Pi / 2,
			LinearTravel:  0,
			Axis1:         0,
			Axis2:         1,
			AxisLinear:    2,
		},
		MoveType:  MoveArc,
		MoveState: StateNew,
	}
	status := drainRun(runArc, m, bf, 100000)
	if status != StatusOK {
		t.Fatalf("runArc never completed: last status %v", status)
	}
	// A quarter turn starting at theta=0 ends at theta=pi/2. runArc places
	// points at center + R*(sin(theta), cos(theta)), so the direction of
	// travel there is (cos(pi/2), -sin(pi/2)) = (0, -1).
	if math.Abs(bf.UnitVec[0]) > 1e-3 || math.Abs(bf.UnitVec[1]-(-1)) > 1e-3 {
		t.Fatalf("end-tangent unit vector = %v, want approximately [0 -1 0]", bf.UnitVec)
	}
}

func TestRunArcEagainWhenQueueNotReady(t *testing.T) {
	m := testMachine()
	q := m.Queue.(*ReferenceMotorQueue)
	q.NotReadyUntil = 1
	bf := &Buffer{
		Target:  []float64{0, 0, 0},
		UnitVec: make([]float64, 3),
		Length:  10,
		Time:    1,
		Arc: ArcData{
			Radius: 5, AngularTravel: 1, Axis1: 0, Axis2: 1, AxisLinear: 2,
		},
		MoveType:  MoveArc,
		MoveState: StateNew,
	}
	if status := runArc(m, bf); status != StatusEAGAIN {
		t.Fatalf("runArc while queue not ready = %v, want EAGAIN", status)
	}
}
