package aline

import "aline-planner/pkg/log"

// testConfig returns a Config usable across the suite; values are chosen to
// keep region math in convenient, easily-checked ranges.
func testConfig() Config {
	return Config{
		Axes:             3,
		Motors:           3,
		LinearJerkMax:    1e7,
		MinSegmentLen:    0.01,
		MinSegmentTime:   2e6,
		BufferSize:       16,
		MaxLookbackDepth: 8,
		MinLineLength:    0.001,
		Epsilon:          1e-6,
	}
}

func testMachine() *Machine {
	cfg := testConfig()
	queue := &ReferenceMotorQueue{}
	kin := &DirectKinematics{}
	stepper := &ReferenceStepperControl{}
	canon := FixedPathControl{Mode: PathContinuous}
	logger := log.New("aline_test")
	logger.SetLevel(log.ERROR)
	return NewMachine(cfg, queue, kin, stepper, canon, logger)
}
