// Package aline implements the jerk-limited line planner: a bounded ring of
// motion buffers, the S-curve region solver, the backward replanner, and the
// cooperative dispatcher/runtime that drains buffers into motor-queue
// segments. See TinyG's planner.c for the originating algorithm; this package
// follows its structure (buffer pool, move/buffer states, region solver,
// backplanner, run-function table) re-expressed with Go idioms.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.
package aline

// BufferState is the producer/consumer lifecycle state of a ring slot.
type BufferState int

const (
	BufferEmpty BufferState = iota
	BufferLoading
	BufferQueued
	BufferPending
	BufferRunning
)

func (s BufferState) String() string {
	switch s {
	case BufferEmpty:
		return "empty"
	case BufferLoading:
		return "loading"
	case BufferQueued:
		return "queued"
	case BufferPending:
		return "pending"
	case BufferRunning:
		return "running"
	default:
		return "unknown"
	}
}

// MoveType tags what a buffer represents.
type MoveType int

const (
	MoveNull MoveType = iota
	MoveAccel
	MoveCruise
	MoveDecel
	MoveLine
	MoveArc
	MoveDwell
	MoveStart
	MoveStop
	MoveEnd
)

func (t MoveType) String() string {
	switch t {
	case MoveNull:
		return "null"
	case MoveAccel:
		return "accel"
	case MoveCruise:
		return "cruise"
	case MoveDecel:
		return "decel"
	case MoveLine:
		return "line"
	case MoveArc:
		return "arc"
	case MoveDwell:
		return "dwell"
	case MoveStart:
		return "start"
	case MoveStop:
		return "stop"
	case MoveEnd:
		return "end"
	default:
		return "unknown"
	}
}

// MoveState is the runtime sub-phase of the move currently at the run head.
type MoveState int

const (
	StateNew MoveState = iota
	StateRunning1
	StateRunning2
	StateFinalize
	StateEnd
)

// PathControlMode governs how the backplanner treats the join velocity
// between consecutive alines.
type PathControlMode int

const (
	PathContinuous PathControlMode = iota
	PathExactPath
	PathExactStop
)

// Status is the result code returned by submit and dispatch operations.
type Status int

const (
	StatusOK Status = iota
	StatusEAGAIN
	StatusNOOP
	StatusCOMPLETE
	StatusZeroLengthMove
	StatusBufferFullFatal
	StatusErr
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusEAGAIN:
		return "EAGAIN"
	case StatusNOOP:
		return "NOOP"
	case StatusCOMPLETE:
		return "COMPLETE"
	case StatusZeroLengthMove:
		return "ZERO_LENGTH_MOVE"
	case StatusBufferFullFatal:
		return "BUFFER_FULL_FATAL"
	case StatusErr:
		return "ERR"
	default:
		return "UNKNOWN"
	}
}

// ArcData carries the fields needed to run a helical/arc move; populated
// only for buffers whose MoveType is MoveArc.
type ArcData struct {
	Theta         float64
	Radius        float64
	AngularTravel float64
	LinearTravel  float64
	Axis1         int
	Axis2         int
	AxisLinear    int
}

// Buffer is the atomic planning/runtime unit. A single user-requested aline
// is represented by three contiguous buffers (head/body/tail); other move
// types (line, arc, dwell, stop/start/end) occupy exactly one buffer.
type Buffer struct {
	State      BufferState
	MoveType   MoveType
	MoveState  MoveState
	Replannable bool

	Target  []float64
	UnitVec []float64

	Length, Time          float64
	StartVelocity         float64
	EndVelocity           float64
	RequestVelocity       float64

	Arc ArcData

	// runtime scratch used only while this buffer is at the run head
	segmentCount  int
	elapsed       float64
	segmentTime   float64
	midVelocity   float64
	midAccel      float64

	// arc runtime scratch (C8)
	segmentTheta  float64
	segmentLength float64
	center1       float64
	center2       float64

	nx, pv *Buffer
}

func (b *Buffer) clear() {
	nx, pv := b.nx, b.pv
	target, unit := b.Target, b.UnitVec
	*b = Buffer{}
	b.nx, b.pv = nx, pv
	b.Target, b.UnitVec = target, unit
	for i := range b.Target {
		b.Target[i] = 0
	}
	for i := range b.UnitVec {
		b.UnitVec[i] = 0
	}
}
