// Planner-master and runtime singleton state (§3, §9), bundled with the
// buffer pool and a reactor into one owning Machine so the cooperative
// model's "no locks, single goroutine" contract is explicit in the type
// rather than assumed. Grounded on planner.c's file-scope mm/mr/mb structs,
// which this package folds into one struct per physical machine instead of
// process-wide globals.
package aline

import (
	"aline-planner/pkg/errors"
	"aline-planner/pkg/log"
	"aline-planner/pkg/reactor"
)

// Config holds the read-only planner configuration (§6).
type Config struct {
	Axes               int
	Motors             int
	LinearJerkMax      float64 // mm/min^3
	MinSegmentLen      float64 // mm
	MinSegmentTime     float64 // microseconds
	BufferSize         int
	MaxLookbackDepth   int
	MinLineLength      float64
	Epsilon            float64
}

const OneMinuteOfMicroseconds = 60e6

// plannerMaster is the producer-side singleton: the end-of-last-planned
// position.
type plannerMaster struct {
	position []float64
}

// runtimeState is the consumer-side singleton: the dispatcher's notion of
// where the tool actually is as segments are emitted.
type runtimeState struct {
	position []float64
}

// Machine bundles everything a single physical machine's planner needs:
// the ring, the planner-master and runtime singletons, the configuration,
// and the reactor that drives the dispatcher. Per spec §9, a multi-machine
// host constructs one Machine per machine; none of its fields are locked.
type Machine struct {
	Cfg     Config
	Pool    *Pool
	mm      plannerMaster
	mr      runtimeState
	Queue   MotorQueue
	Kin     Kinematics
	Stepper StepperControl
	Canon   CanonicalMachine
	Reactor *reactor.Reactor
	Logger  *log.Logger

	dispatchTimer *reactor.Timer
	history       HistorySink

	runFlag    bool
	currentRun runFunc
}

// HistorySink receives a record each time the dispatcher finalizes a
// buffer; pkg/history implements this against sqlite3. Nil disables it.
type HistorySink interface {
	RecordFinalized(moveType MoveType, startVelocity, endVelocity, length float64)
}

// NewMachine constructs a Machine with a fresh ring, planner-master and
// runtime state zeroed at the origin, and a reactor ready to be started by
// the caller via StartDispatcher.
func NewMachine(cfg Config, queue MotorQueue, kin Kinematics, stepper StepperControl, canon CanonicalMachine, logger *log.Logger) *Machine {
	m := &Machine{
		Cfg:     cfg,
		Pool:    NewPool(cfg.BufferSize, cfg.Axes),
		mm:      plannerMaster{position: make([]float64, cfg.Axes)},
		mr:      runtimeState{position: make([]float64, cfg.Axes)},
		Queue:   queue,
		Kin:     kin,
		Stepper: stepper,
		Canon:   canon,
		Reactor: reactor.New(),
		Logger:  logger,
	}
	return m
}

// SetHistorySink attaches a diagnostic history subscriber (pkg/history).
// The planner never reads it back; it is write-only and outside the
// volatile-planner-state contract of §6.
func (m *Machine) SetHistorySink(h HistorySink) { m.history = h }

// SetPosition overwrites both planner-master and runtime positions, for
// coordinate-offset commands (e.g. G92).
func (m *Machine) SetPosition(pos []float64) {
	copy(m.mm.position, pos)
	copy(m.mr.position, pos)
}

func (m *Machine) logf(level log.LogLevel, msg string, fields log.Fields) {
	if m.Logger == nil {
		return
	}
	switch level {
	case log.DEBUG:
		m.Logger.Debug(msg, fields)
	case log.WARN:
		m.Logger.Warn(msg, fields)
	case log.ERROR:
		m.Logger.Error(msg, fields)
	default:
		m.Logger.Info(msg, fields)
	}
}

func (m *Machine) trap(err *errors.HostError, fields log.Fields) {
	m.logf(log.WARN, err.Message, fields)
}

// StartDispatcher registers the reactor timer that drives Step()
// cooperatively and starts the reactor's dispatch loop (§4.6 expansion).
func (m *Machine) StartDispatcher() {
	m.dispatchTimer = m.Reactor.RegisterTimer(m.dispatchTick, reactor.NOW)
	m.Reactor.Run()
}

func (m *Machine) dispatchTick(eventtime float64) float64 {
	status := m.Step()
	switch status {
	case StatusEAGAIN, StatusOK, StatusCOMPLETE:
		return reactor.NOW
	default: // NOOP: nothing runnable, idle until woken by a new commit
		return eventtime + 0.01
	}
}

// Wake nudges the dispatcher to re-check the run head soon; submit
// front-ends call this after a successful commit so an idling reactor does
// not wait out its full idle interval.
func (m *Machine) Wake() {
	if m.dispatchTimer != nil {
		m.Reactor.UpdateTimer(m.dispatchTimer, reactor.NOW)
	}
}

// Stop ends the reactor's dispatch loop.
func (m *Machine) Stop() {
	m.Reactor.End()
}
