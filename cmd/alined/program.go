package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"aline-planner/pkg/aline"
)

// command is one line of a move program: a verb plus its absolute target
// and, for LINE/ALINE, the travel time in minutes (aline.Config's native
// time unit, matching plannerMaster's mm/min velocities).
type command struct {
	verb   string
	target []float64
	time   float64
}

// loadProgram parses a plain-text move program, one command per line:
//
//	LINE  x y z ... minutes
//	ALINE x y z ... minutes
//	DWELL seconds
//	STOP
//	START
//	END
//
// Blank lines and lines starting with # are ignored.
func loadProgram(path string) ([]command, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("program: open %s: %w", path, err)
	}
	defer f.Close()

	var cmds []command
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		verb := strings.ToUpper(fields[0])
		switch verb {
		case "LINE", "ALINE":
			if len(fields) < 2 {
				return nil, fmt.Errorf("program: line %d: %s needs at least a travel time", lineNo, verb)
			}
			nums := fields[1:]
			minutes, err := strconv.ParseFloat(nums[len(nums)-1], 64)
			if err != nil {
				return nil, fmt.Errorf("program: line %d: bad travel time %q: %w", lineNo, nums[len(nums)-1], err)
			}
			target := make([]float64, len(nums)-1)
			for i, n := range nums[:len(nums)-1] {
				v, err := strconv.ParseFloat(n, 64)
				if err != nil {
					return nil, fmt.Errorf("program: line %d: bad coordinate %q: %w", lineNo, n, err)
				}
				target[i] = v
			}
			cmds = append(cmds, command{verb: verb, target: target, time: minutes})
		case "DWELL":
			if len(fields) != 2 {
				return nil, fmt.Errorf("program: line %d: DWELL needs exactly one duration", lineNo)
			}
			seconds, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("program: line %d: bad duration %q: %w", lineNo, fields[1], err)
			}
			cmds = append(cmds, command{verb: verb, time: seconds})
		case "STOP", "START", "END":
			cmds = append(cmds, command{verb: verb})
		default:
			return nil, fmt.Errorf("program: line %d: unknown command %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("program: %s: %w", path, err)
	}
	return cmds, nil
}

// submitProgram feeds commands to the machine's submit front-ends in order.
// A target shorter than the machine's axis count is padded with zeros so a
// two-axis demo program still works against a three-axis machine.
func submitProgram(m *aline.Machine, cmds []command) error {
	axes := m.Cfg.Axes
	pad := func(target []float64) []float64 {
		if len(target) >= axes {
			return target[:axes]
		}
		out := make([]float64, axes)
		copy(out, target)
		return out
	}

	for i, c := range cmds {
		var (
			status aline.Status
			err    error
		)
		switch c.verb {
		case "LINE":
			status, err = m.SubmitLine(pad(c.target), c.time)
		case "ALINE":
			status, err = m.SubmitAline(pad(c.target), c.time)
		case "DWELL":
			status, err = m.SubmitDwell(c.time)
		case "STOP":
			status, _, err = m.SubmitStop()
		case "START":
			status, _, err = m.SubmitStart()
		case "END":
			status, _, err = m.SubmitEnd()
		}
		if err != nil {
			return fmt.Errorf("program: command %d (%s): %w", i+1, c.verb, err)
		}
		if status != aline.StatusOK && status != aline.StatusZeroLengthMove {
			return fmt.Errorf("program: command %d (%s): unexpected status %v", i+1, c.verb, status)
		}
	}
	return nil
}
