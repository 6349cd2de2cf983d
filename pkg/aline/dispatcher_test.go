package aline

import "testing"

func TestStepRunsSimpleLine(t *testing.T) {
	m := testMachine()
	_, err := m.SubmitLine([]float64{10, 0, 0}, 1)
	if err != nil {
		t.Fatalf("SubmitLine error: %v", err)
	}
	status := m.Step()
	if status != StatusOK {
		t.Fatalf("Step = %v, want OK", status)
	}
	q := m.Queue.(*ReferenceMotorQueue)
	if len(q.Lines) != 1 {
		t.Fatalf("expected 1 emitted line segment, got %d", len(q.Lines))
	}
	if m.Pool.Stats().Empty != m.Pool.Len() {
		t.Fatal("buffer should be freed back to the pool after Step completes it")
	}
}

func TestStepNoopOnEmptyRing(t *testing.T) {
	m := testMachine()
	if status := m.Step(); status != StatusNOOP {
		t.Fatalf("Step on an empty ring = %v, want NOOP", status)
	}
}

func TestStepEagainWhenQueueNotReady(t *testing.T) {
	m := testMachine()
	q := m.Queue.(*ReferenceMotorQueue)
	q.NotReadyUntil = 2

	_, err := m.SubmitLine([]float64{5, 0, 0}, 1)
	if err != nil {
		t.Fatalf("SubmitLine error: %v", err)
	}
	if status := m.Step(); status != StatusEAGAIN {
		t.Fatalf("Step while queue not ready = %v, want EAGAIN", status)
	}
	if status := m.Step(); status != StatusEAGAIN {
		t.Fatalf("second Step while queue not ready = %v, want EAGAIN", status)
	}
	if status := m.Step(); status != StatusOK {
		t.Fatalf("Step once queue becomes ready = %v, want OK", status)
	}
}

func TestStepRunsDwell(t *testing.T) {
	m := testMachine()
	_, err := m.SubmitDwell(0.5)
	if err != nil {
		t.Fatalf("SubmitDwell error: %v", err)
	}
	if status := m.Step(); status != StatusOK {
		t.Fatalf("Step(dwell) = %v, want OK", status)
	}
	q := m.Queue.(*ReferenceMotorQueue)
	if len(q.Dwells) != 1 {
		t.Fatalf("expected 1 dwell emitted, got %d", len(q.Dwells))
	}
}

func TestStepRunsMarkers(t *testing.T) {
	m := testMachine()
	_, _, err := m.SubmitStart()
	if err != nil {
		t.Fatalf("SubmitStart error: %v", err)
	}
	if status := m.Step(); status != StatusOK {
		t.Fatalf("Step(start marker) = %v, want OK", status)
	}
	q := m.Queue.(*ReferenceMotorQueue)
	if len(q.Stops) != 1 || q.Stops[0] != MoveStart {
		t.Fatalf("expected a start marker emitted, got %v", q.Stops)
	}
}

func TestStepRecordsHistory(t *testing.T) {
	m := testMachine()
	rec := &fakeHistory{}
	m.SetHistorySink(rec)
	if _, err := m.SubmitLine([]float64{10, 0, 0}, 1); err != nil {
		t.Fatalf("SubmitLine error: %v", err)
	}
	m.Step()
	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(rec.calls))
	}
	if rec.calls[0] != MoveLine {
		t.Fatalf("recorded move type = %v, want line", rec.calls[0])
	}
}

type fakeHistory struct {
	calls []MoveType
}

func (f *fakeHistory) RecordFinalized(moveType MoveType, startVelocity, endVelocity, length float64) {
	f.calls = append(f.calls, moveType)
}
