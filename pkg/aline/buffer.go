// Ring buffer pool (C1): fixed-capacity ring of motion buffers with
// producer/consumer cursors and per-slot lifecycle states.
//
// Grounded on TinyG's _mp_get_write_buffer/_mp_queue_write_buffer/
// _mp_get_run_buffer/_mp_finalize_run_buffer/_mp_get_prev_buffer_implicit
// (planner.c). The doubly linked nx/pv ring survives slot clearing, exactly
// as the design note in the spec permits.
package aline

import (
	"aline-planner/pkg/errors"
)

// Pool is the bounded ring of motion buffers shared by the producer
// (submit front-ends) and the consumer (dispatcher). It is never locked:
// per the single-threaded cooperative model, both roles run on the same
// goroutine driven by one Machine's reactor.
type Pool struct {
	slots []*Buffer
	w, q, r int // cursor indices into slots
	axes    int
}

// NewPool allocates a ring of n buffers, each with an axes-sized Target and
// UnitVec slice preallocated so the hot paths never allocate.
func NewPool(n, axes int) *Pool {
	p := &Pool{slots: make([]*Buffer, n), axes: axes}
	for i := range p.slots {
		p.slots[i] = &Buffer{
			Target:  make([]float64, axes),
			UnitVec: make([]float64, axes),
		}
	}
	for i := range p.slots {
		p.slots[i].nx = p.slots[(i+1)%n]
		p.slots[i].pv = p.slots[(i-1+n)%n]
	}
	return p
}

func (p *Pool) Len() int { return len(p.slots) }

// Reserve claims the slot at the write cursor if it is empty, advancing the
// write cursor. Multiple reservations may be outstanding simultaneously (up
// to the ring's capacity); commit order must match reserve order.
func (p *Pool) Reserve() *Buffer {
	b := p.slots[p.w]
	if b.State != BufferEmpty {
		return nil
	}
	b.clear()
	b.State = BufferLoading
	p.w = (p.w + 1) % len(p.slots)
	return b
}

// Release undoes the most recent Reserve. Valid only immediately after a
// Reserve that will not be committed.
func (p *Pool) Release() {
	p.w = (p.w - 1 + len(p.slots)) % len(p.slots)
	p.slots[p.w].State = BufferEmpty
}

// Commit marks the slot at the queue cursor as queued and advances it.
func (p *Pool) Commit(moveType MoveType) {
	b := p.slots[p.q]
	b.MoveType = moveType
	b.MoveState = StateNew
	b.State = BufferQueued
	p.q = (p.q + 1) % len(p.slots)
}

// RunHead returns the slot at the run cursor, promoting it from
// queued/pending to running, or the same slot if already running. Returns
// nil if the run cursor has nothing runnable.
func (p *Pool) RunHead() *Buffer {
	b := p.slots[p.r]
	switch b.State {
	case BufferQueued, BufferPending:
		b.State = BufferRunning
		return b
	case BufferRunning:
		return b
	default:
		return nil
	}
}

// FinalizeRun clears the slot at the run cursor, advances it, and promotes
// the new run-head slot to pending if it is queued.
func (p *Pool) FinalizeRun() {
	b := p.slots[p.r]
	b.clear()
	b.State = BufferEmpty
	p.r = (p.r + 1) % len(p.slots)
	if next := p.slots[p.r]; next.State == BufferQueued {
		next.State = BufferPending
	}
}

// HaveFree reports whether the n slots starting at the write cursor are all
// empty.
func (p *Pool) HaveFree(n int) bool {
	if n > len(p.slots) {
		return false
	}
	idx := p.w
	for i := 0; i < n; i++ {
		if p.slots[idx].State != BufferEmpty {
			return false
		}
		idx = (idx + 1) % len(p.slots)
	}
	return true
}

// PrevImplicit returns the slot immediately before the write cursor: the
// most recently committed tail, used for cornering calculations. It must
// never be queued or finalized directly.
func (p *Pool) PrevImplicit() *Buffer {
	idx := (p.w - 1 + len(p.slots)) % len(p.slots)
	return p.slots[idx]
}

// bufferBefore walks back n slots from the given buffer, following pv
// links (the backplanner uses prevTripleHead for its own walk).
func (p *Pool) bufferBefore(from *Buffer, n int) *Buffer {
	b := from
	for i := 0; i < n; i++ {
		b = b.pv
	}
	return b
}

// ReserveAline reserves three contiguous buffers (head, body, tail) for an
// aline submission, or returns a BUFFER_FULL_FATAL error and releases
// nothing (nothing was reserved) if the ring doesn't have three free slots.
func (p *Pool) ReserveAline() (head, body, tail *Buffer, err error) {
	if !p.HaveFree(3) {
		return nil, nil, nil, errors.PlannerBufferFullError("submit_aline")
	}
	head = p.Reserve()
	body = p.Reserve()
	tail = p.Reserve()
	return head, body, tail, nil
}

// Stats reports slot counts per state, used by status snapshots.
type Stats struct {
	Empty, Loading, Queued, Pending, Running int
	Capacity                                 int
	Write, Queue, Run                        int
}

func (p *Pool) Stats() Stats {
	s := Stats{Capacity: len(p.slots), Write: p.w, Queue: p.q, Run: p.r}
	for _, b := range p.slots {
		switch b.State {
		case BufferEmpty:
			s.Empty++
		case BufferLoading:
			s.Loading++
		case BufferQueued:
			s.Queued++
		case BufferPending:
			s.Pending++
		case BufferRunning:
			s.Running++
		}
	}
	return s
}
