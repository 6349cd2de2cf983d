// alined runs the motion planner as a standalone service: it loads a
// printer.cfg-style [planner] section, drives a demo move program through
// the ring buffer, records finalized moves to sqlite3, and exposes the
// dispatcher's live status over a websocket.
//
// Usage:
//
//	alined -config printer.cfg [options]
//
// Options:
//
//	-config string    Configuration file with a [planner] section (required)
//	-program string   Move program to submit at startup (one command per line)
//	-monitor string   Status websocket address (default ":8787")
//	-history string   sqlite3 path for finalized-move history (default "alined_history.db")
//	-trace            Enable debug-level logging
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"aline-planner/pkg/aline"
	"aline-planner/pkg/config"
	"aline-planner/pkg/history"
	"aline-planner/pkg/kinematics"
	"aline-planner/pkg/log"
	"aline-planner/pkg/monitor"
)

// buildKinematics returns the 1:1 DirectKinematics demo mapping unless
// -step-distance was given, in which case it builds a per-axis Cartesian
// rail kinematics and wraps it for the planner's narrower Convert contract.
func buildKinematics(axes int, stepDistances string) (aline.Kinematics, error) {
	if stepDistances == "" {
		return &aline.DirectKinematics{}, nil
	}
	fields := strings.Split(stepDistances, ",")
	if len(fields) != axes {
		return nil, fmt.Errorf("-step-distance has %d values, want %d (one per axis)", len(fields), axes)
	}
	rails := make([]kinematics.Rail, axes)
	for i, f := range fields {
		d, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("-step-distance[%d]: %w", i, err)
		}
		rails[i] = kinematics.Rail{Name: fmt.Sprintf("axis%d", i), StepDist: d, PositionMin: -1e9, PositionMax: 1e9}
	}
	cart := kinematics.NewCartesianKinematics(rails, 0, 0)
	return kinematics.NewRailKinematics(cart), nil
}

func main() {
	configFile := flag.String("config", "", "configuration file with a [planner] section (required)")
	programFile := flag.String("program", "", "move program to submit at startup")
	monitorAddr := flag.String("monitor", ":8787", "status websocket address")
	historyPath := flag.String("history", "alined_history.db", "sqlite3 path for finalized-move history")
	stepDistances := flag.String("step-distance", "", "comma-separated mm/step per axis; enables rail kinematics instead of the 1:1 demo mapping")
	trace := flag.Bool("trace", false, "enable debug-level logging")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		flag.Usage()
		os.Exit(1)
	}

	logger := log.New("alined")
	if *trace {
		logger.SetLevel(log.DEBUG)
	} else {
		logger.SetLevel(log.INFO)
	}

	logger.Info("alined starting", log.Fields{"config": *configFile})

	cfgFile, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", log.Fields{"error": err.Error()})
		os.Exit(1)
	}
	plannerCfg, err := config.LoadPlanner(cfgFile)
	if err != nil {
		logger.Error("failed to load [planner] section", log.Fields{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("planner config loaded", log.Fields{
		"axes": plannerCfg.Axes, "jerk_max": plannerCfg.LinearJerkMax,
		"buffer_size": plannerCfg.BufferSize, "checksum": plannerCfg.Checksum(),
	})

	store, err := history.Open(*historyPath, logger.WithPrefix("history"))
	if err != nil {
		logger.Error("failed to open history store", log.Fields{"error": err.Error()})
		os.Exit(1)
	}
	defer store.Close()

	queue := &aline.ReferenceMotorQueue{}
	kin, err := buildKinematics(plannerCfg.Axes, *stepDistances)
	if err != nil {
		logger.Error("failed to build kinematics", log.Fields{"error": err.Error()})
		os.Exit(1)
	}
	stepper := &aline.ReferenceStepperControl{}
	canon := aline.FixedPathControl{Mode: aline.PathContinuous}

	machine := aline.NewMachine(plannerCfg.Config, queue, kin, stepper, canon, logger.WithPrefix("aline"))
	machine.SetHistorySink(store)

	mon := monitor.New(monitor.Config{
		Addr:   *monitorAddr,
		Source: machine,
		Logger: logger.WithPrefix("monitor"),
	})
	if err := mon.Start(); err != nil {
		logger.Error("failed to start monitor server", log.Fields{"error": err.Error()})
		os.Exit(1)
	}
	defer mon.Stop()
	logger.Info("status server listening", log.Fields{"addr": *monitorAddr})

	if *programFile != "" {
		program, err := loadProgram(*programFile)
		if err != nil {
			logger.Error("failed to load move program", log.Fields{"error": err.Error()})
			os.Exit(1)
		}
		if err := submitProgram(machine, program); err != nil {
			logger.Error("failed to submit move program", log.Fields{"error": err.Error()})
			os.Exit(1)
		}
		logger.Info("move program submitted", log.Fields{"commands": len(program)})
	}

	go machine.StartDispatcher()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("alined ready, press Ctrl+C to stop", nil)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-sigCh:
			logger.Info("shutdown signal received", nil)
			machine.Stop()
			n, err := store.Count()
			if err == nil {
				logger.Info("alined stopped", log.Fields{"moves_recorded": n})
			}
			return
		case <-ticker.C:
			snap := machine.GetStatus()
			logger.Debug("status", log.Fields{
				"current_move": snap.CurrentMove.String(),
				"queued":       snap.Stats.Queued,
				"running":      snap.Stats.Running,
			})
		}
	}
}
