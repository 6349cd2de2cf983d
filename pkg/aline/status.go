// Status snapshot (§6 expansion): a point-in-time view of the ring and
// dispatcher for introspection, pushed by pkg/monitor over websocket. The
// planner itself persists nothing (§6): this is a read-only view, never
// consulted by planning or replanning.
package aline

import "aline-planner/pkg/pool"

// Snapshot is a GC-light status payload: AsMap draws its map from pkg/pool's
// StatusMap pool so repeated encoding reuses maps.
type Snapshot struct {
	Stats       Stats
	RunFlag     bool
	CurrentMove MoveType
	Position    []float64
}

// GetStatus returns a snapshot of the current ring/dispatcher state.
func (m *Machine) GetStatus() Snapshot {
	var current MoveType
	if bf := m.Pool.slots[m.Pool.r]; bf != nil {
		current = bf.MoveType
	}
	pos := make([]float64, len(m.mr.position))
	copy(pos, m.mr.position)
	return Snapshot{
		Stats:       m.Pool.Stats(),
		RunFlag:     m.runFlag,
		CurrentMove: current,
		Position:    pos,
	}
}

// AsMap renders a Snapshot into a pooled status map for JSON encoding,
// matching the shape pkg/log and pkg/monitor already use for structured
// payloads.
func (s Snapshot) AsMap() map[string]any {
	m := pool.GetStatusMap()
	m["capacity"] = s.Stats.Capacity
	m["empty"] = s.Stats.Empty
	m["queued"] = s.Stats.Queued
	m["pending"] = s.Stats.Pending
	m["running"] = s.Stats.Running
	m["run_flag"] = s.RunFlag
	m["current_move"] = s.CurrentMove.String()
	m["position"] = s.Position
	return m
}
