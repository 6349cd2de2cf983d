package aline

import (
	"math"
	"testing"
)

func TestBackplanRaisesSharedJoinVelocity(t *testing.T) {
	m := testMachine()

	if _, err := m.SubmitAline([]float64{1000, 0, 0}, 2); err != nil {
		t.Fatalf("first SubmitAline error: %v", err)
	}
	tail1 := m.Pool.PrevImplicit()
	if tail1.MoveType != MoveDecel {
		t.Fatalf("expected the first aline's tail at PrevImplicit, got %v", tail1.MoveType)
	}
	firstEndVelocity := tail1.EndVelocity
	if firstEndVelocity > m.Cfg.Epsilon {
		t.Fatalf("an aline with no successor should still plan to a full stop, got EndVelocity=%v", firstEndVelocity)
	}

	if _, err := m.SubmitAline([]float64{2000, 0, 0}, 2); err != nil {
		t.Fatalf("second SubmitAline error: %v", err)
	}

	if tail1.EndVelocity <= firstEndVelocity+m.Cfg.Epsilon {
		t.Fatalf("backplan should have raised the first move's join velocity above %v, got %v", firstEndVelocity, tail1.EndVelocity)
	}
}

func TestCorneringFactorReducesEntryVelocity(t *testing.T) {
	m := testMachine()
	if _, err := m.SubmitAline([]float64{1000, 0, 0}, 2); err != nil {
		t.Fatalf("first SubmitAline error: %v", err)
	}
	tail1 := m.Pool.PrevImplicit()
	straightTargetVelocity := tail1.RequestVelocity

	if _, err := m.SubmitAline([]float64{1000, 1000, 0}, 2); err != nil {
		t.Fatalf("second (90-degree) SubmitAline error: %v", err)
	}
	head2 := m.Pool.bufferBefore(m.Pool.PrevImplicit(), 2)
	want := straightTargetVelocity * math.Cos(math.Pi/4)
	if head2.RequestVelocity > want+m.Cfg.Epsilon {
		t.Fatalf("cornering entry velocity %v should not exceed the 90-degree cap %v", head2.RequestVelocity, want)
	}
}

func TestExactStopForcesImmediateRetirement(t *testing.T) {
	m := testMachine()
	m.Canon = FixedPathControl{Mode: PathExactStop}

	if _, err := m.SubmitAline([]float64{1000, 0, 0}, 2); err != nil {
		t.Fatalf("first SubmitAline error: %v", err)
	}
	tail1 := m.Pool.PrevImplicit()

	if _, err := m.SubmitAline([]float64{2000, 0, 0}, 2); err != nil {
		t.Fatalf("second SubmitAline error: %v", err)
	}

	if tail1.Replannable {
		t.Fatal("exact-stop path mode should retire the predecessor as non-replannable")
	}
	if tail1.EndVelocity != 0 {
		t.Fatalf("exact-stop predecessor EndVelocity = %v, want 0", tail1.EndVelocity)
	}
}

func TestArcFollowedByLineSkipsBackplanAcrossArc(t *testing.T) {
	m := testMachine()
	_, err := m.SubmitArc(
		[]float64{10, 10, 0}, 0, 10, 0, 0, 10, math.Pi/2, 0,
		0, 1, 2, 1,
	)
	if err != nil {
		t.Fatalf("SubmitArc error: %v", err)
	}
	arcBuf := m.Pool.PrevImplicit()
	if arcBuf.MoveType != MoveArc {
		t.Fatalf("expected the arc at PrevImplicit before it runs, got %v", arcBuf.MoveType)
	}

	// Submit an aline immediately after, while the arc is still queued (not
	// yet run): its entry velocity must come straight from the arc's planned
	// exit velocity, and backplan() must never be asked to walk pv links
	// across the arc's single buffer (it carries no aline-region MoveType).
	if _, err := m.SubmitAline([]float64{20, 20, 0}, 2); err != nil {
		t.Fatalf("SubmitAline after arc error: %v", err)
	}
	head := m.Pool.bufferBefore(m.Pool.PrevImplicit(), 2)
	if head.StartVelocity != arcBuf.EndVelocity {
		t.Fatalf("aline entry velocity = %v, want the arc's planned exit velocity %v", head.StartVelocity, arcBuf.EndVelocity)
	}
}
