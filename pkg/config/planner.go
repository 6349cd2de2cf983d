package config

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"aline-planner/pkg/aline"
)

// PlannerConfig is the on-disk twin of aline.Config: every field in the
// [planner] section, read through Section's bounds-checked getters so a
// malformed config.cfg fails loudly at startup rather than degrading the
// solver silently.
type PlannerConfig struct {
	aline.Config
}

// LoadPlanner reads the [planner] section into an aline.Config, applying
// the same minimums TinyG's settings.h documents for a jerk-limited motion
// system: a positive jerk, a segment floor above zero, and a buffer deep
// enough to hold at least one aline triple.
func LoadPlanner(cfg *Config) (PlannerConfig, error) {
	sec, err := cfg.GetSection("planner")
	if err != nil {
		return PlannerConfig{}, err
	}

	axes, err := sec.GetIntWithBounds("axes", intPtr(1), intPtr(9), 3)
	if err != nil {
		return PlannerConfig{}, err
	}
	motors, err := sec.GetIntWithBounds("motors", intPtr(1), intPtr(9), axes)
	if err != nil {
		return PlannerConfig{}, err
	}

	above0 := 0.0
	jerk, err := sec.GetFloatWithBounds("linear_jerk_max", FloatBounds{Above: &above0})
	if err != nil {
		return PlannerConfig{}, err
	}
	minSegLen, err := sec.GetFloatWithBounds("min_segment_len", FloatBounds{Above: &above0}, 0.01)
	if err != nil {
		return PlannerConfig{}, err
	}
	minSegTime, err := sec.GetFloatWithBounds("min_segment_time", FloatBounds{Above: &above0}, 10000)
	if err != nil {
		return PlannerConfig{}, err
	}
	bufSize, err := sec.GetIntWithBounds("mp_buffer_size", intPtr(6), intPtr(256), 48)
	if err != nil {
		return PlannerConfig{}, err
	}
	lookback, err := sec.GetIntWithBounds("mp_max_lookback_depth", intPtr(1), intPtr(64), 4)
	if err != nil {
		return PlannerConfig{}, err
	}
	minLine, err := sec.GetFloatWithBounds("min_line_length", FloatBounds{Above: &above0}, 0.001)
	if err != nil {
		return PlannerConfig{}, err
	}
	eps, err := sec.GetFloatWithBounds("epsilon", FloatBounds{Above: &above0}, 1e-6)
	if err != nil {
		return PlannerConfig{}, err
	}

	return PlannerConfig{aline.Config{
		Axes:             axes,
		Motors:           motors,
		LinearJerkMax:    jerk,
		MinSegmentLen:    minSegLen,
		MinSegmentTime:   minSegTime,
		BufferSize:       bufSize,
		MaxLookbackDepth: lookback,
		MinLineLength:    minLine,
		Epsilon:          eps,
	}}, nil
}

func intPtr(i int) *int { return &i }

// Checksum fingerprints the resolved configuration, the way Klipper's
// save_config compares a checksum of the active printer.cfg before allowing
// a restart. cmd/alined logs it at startup; no status payload carries it.
func (p PlannerConfig) Checksum() string {
	msg := fmt.Sprintf("%d|%d|%g|%g|%g|%d|%d|%g|%g",
		p.Axes, p.Motors, p.LinearJerkMax, p.MinSegmentLen, p.MinSegmentTime,
		p.BufferSize, p.MaxLookbackDepth, p.MinLineLength, p.Epsilon)
	sum := sha3.Sum256([]byte(msg))
	return hex.EncodeToString(sum[:])
}
