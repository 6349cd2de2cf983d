package aline

import "testing"

// TestIntegrationSubmitLineBasic mirrors the simplest end-to-end scenario:
// submit a line, step the dispatcher to completion, observe the emitted
// segment and the freed buffer.
func TestIntegrationSubmitLineBasic(t *testing.T) {
	m := testMachine()
	status, err := m.SubmitLine([]float64{50, 0, 0}, 1)
	if err != nil || status != StatusOK {
		t.Fatalf("SubmitLine = (%v, %v), want (OK, nil)", status, err)
	}
	if status := m.Step(); status != StatusOK {
		t.Fatalf("Step = %v, want OK", status)
	}
	q := m.Queue.(*ReferenceMotorQueue)
	if len(q.Lines) != 1 {
		t.Fatalf("expected exactly one emitted segment for a simple line, got %d", len(q.Lines))
	}
}

// TestIntegrationSubmitAlineHBT mirrors an aline long enough to reach a
// full head+body+tail split.
func TestIntegrationSubmitAlineHBT(t *testing.T) {
	m := testMachine()
	status, err := m.SubmitAline([]float64{5000, 0, 0}, 5)
	if err != nil || status != StatusOK {
		t.Fatalf("SubmitAline = (%v, %v), want (OK, nil)", status, err)
	}
	stats := m.Pool.Stats()
	if stats.Queued != 3 {
		t.Fatalf("expected 3 queued regions (head/body/tail), got %d", stats.Queued)
	}

	for i := 0; i < 3; i++ {
		status := drainStep(m, 1000000)
		if status != StatusOK {
			t.Fatalf("region %d did not complete: last status %v", i, status)
		}
	}
	if m.Pool.Stats().Empty != m.Pool.Len() {
		t.Fatal("all three regions should be freed after running to completion")
	}
}

// TestIntegrationColinearAlinesShareJoinVelocity exercises backplanning
// across two colinear moves end-to-end through Step, not just direct field
// inspection.
func TestIntegrationColinearAlinesShareJoinVelocity(t *testing.T) {
	m := testMachine()
	if _, err := m.SubmitAline([]float64{1000, 0, 0}, 2); err != nil {
		t.Fatalf("first SubmitAline error: %v", err)
	}
	tail1 := m.Pool.PrevImplicit()
	if _, err := m.SubmitAline([]float64{2000, 0, 0}, 2); err != nil {
		t.Fatalf("second SubmitAline error: %v", err)
	}
	if tail1.EndVelocity <= m.Cfg.Epsilon {
		t.Fatalf("tail1.EndVelocity = %v, want raised above a full stop by backplanning", tail1.EndVelocity)
	}

	for i := 0; i < 6; i++ {
		if status := drainStep(m, 1000000); status != StatusOK {
			t.Fatalf("region %d did not complete: last status %v", i, status)
		}
	}
}

// TestIntegrationExactStopForcesStopBetweenAlines submits two alines under
// exact-stop path control and confirms the retired predecessor's tail is
// planned to end at zero velocity.
func TestIntegrationExactStopForcesStopBetweenAlines(t *testing.T) {
	m := testMachine()
	m.Canon = FixedPathControl{Mode: PathExactStop}
	if _, err := m.SubmitAline([]float64{1000, 0, 0}, 2); err != nil {
		t.Fatalf("first SubmitAline error: %v", err)
	}
	tail1 := m.Pool.PrevImplicit()
	if _, err := m.SubmitAline([]float64{2000, 0, 0}, 2); err != nil {
		t.Fatalf("second SubmitAline error: %v", err)
	}
	if tail1.EndVelocity != 0 {
		t.Fatalf("exact-stop tail.EndVelocity = %v, want 0", tail1.EndVelocity)
	}
}

// TestIntegrationSubmitAlineHTDegenerateBodyIsNull drives a real SubmitAline
// call into the no-body HT branch and checks that the committed buffers
// carry move types derived from their actual length and velocities rather
// than a fixed per-slot assumption. A first move enters and leaves at 0; a
// 5 mm move requested at 1000 mm/min needs Len(0,1000) = 10 mm for each of
// the head and tail trials, so the HBT trial's B is negative, no
// single-region shortcut applies, and the length is split between head and
// tail. The degenerate body in particular must come out null: its start and
// end velocities are equal, so only its zero length keeps it from being
// classified as a cruise.
// Hand-constructed Buffer{} literals elsewhere in this package set MoveType
// correctly before asserting on it, which can't catch a regression in how
// MoveType actually gets assigned; this test goes through SubmitAline itself.
func TestIntegrationSubmitAlineHTDegenerateBodyIsNull(t *testing.T) {
	m := testMachine()
	status, err := m.SubmitAline([]float64{5, 0, 0}, 0.005)
	if err != nil || status != StatusOK {
		t.Fatalf("SubmitAline = (%v, %v), want (OK, nil)", status, err)
	}

	tail := m.Pool.PrevImplicit()
	body := tail.pv
	head := body.pv

	if body.Length != 0 {
		t.Fatalf("body.Length = %v, want 0 (HT split leaves no body region)", body.Length)
	}
	if body.StartVelocity != body.EndVelocity || body.StartVelocity == 0 {
		t.Fatalf("body start/end velocity = %v/%v, want equal and nonzero so only the length separates null from cruise", body.StartVelocity, body.EndVelocity)
	}
	if body.MoveType != MoveNull {
		t.Fatalf("body.MoveType = %v, want MoveNull for a zero-length region (a hardcoded MoveCruise here would violate spec.md's minimum-length invariant)", body.MoveType)
	}

	if head.StartVelocity >= head.EndVelocity {
		t.Fatalf("head start/end velocity = %v/%v, want an acceleration for this branch", head.StartVelocity, head.EndVelocity)
	}
	if head.MoveType != MoveAccel {
		t.Fatalf("head.MoveType = %v, want MoveAccel (length %v, start velocity %v < end velocity %v)", head.MoveType, head.Length, head.StartVelocity, head.EndVelocity)
	}

	if tail.StartVelocity <= tail.EndVelocity {
		t.Fatalf("tail.StartVelocity = %v, want > tail.EndVelocity = %v", tail.StartVelocity, tail.EndVelocity)
	}
	if tail.MoveType != MoveDecel {
		t.Fatalf("tail.MoveType = %v, want MoveDecel (start velocity %v > end velocity %v)", tail.MoveType, tail.StartVelocity, tail.EndVelocity)
	}
}

func drainStep(m *Machine, budget int) Status {
	var status Status
	for i := 0; i < budget; i++ {
		status = m.Step()
		if status != StatusEAGAIN {
			return status
		}
	}
	return status
}
