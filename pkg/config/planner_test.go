package config

import "testing"

func TestLoadPlannerDefaults(t *testing.T) {
	data := `
[planner]
linear_jerk_max: 50000000
`
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	pc, err := LoadPlanner(cfg)
	if err != nil {
		t.Fatalf("LoadPlanner failed: %v", err)
	}
	if pc.Axes != 3 {
		t.Errorf("Axes default = %d, want 3", pc.Axes)
	}
	if pc.Motors != 3 {
		t.Errorf("Motors default = %d, want Axes (3)", pc.Motors)
	}
	if pc.LinearJerkMax != 50000000 {
		t.Errorf("LinearJerkMax = %v, want 5e7", pc.LinearJerkMax)
	}
	if pc.BufferSize != 48 {
		t.Errorf("BufferSize default = %d, want 48", pc.BufferSize)
	}
}

func TestLoadPlannerMissingJerkFails(t *testing.T) {
	data := `
[planner]
axes: 3
`
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if _, err := LoadPlanner(cfg); err == nil {
		t.Fatal("expected an error for a missing required linear_jerk_max")
	}
}

func TestLoadPlannerRejectsZeroJerk(t *testing.T) {
	data := `
[planner]
linear_jerk_max: 0
`
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if _, err := LoadPlanner(cfg); err == nil {
		t.Fatal("expected an error for a non-positive linear_jerk_max")
	}
}

func TestLoadPlannerMissingSectionFails(t *testing.T) {
	cfg, err := LoadString("[printer]\nkinematics: cartesian\n")
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if _, err := LoadPlanner(cfg); err == nil {
		t.Fatal("expected an error when [planner] section is absent")
	}
}

func TestChecksumStableAndSensitive(t *testing.T) {
	data := "[planner]\nlinear_jerk_max: 50000000\n"
	cfg, _ := LoadString(data)
	pc, err := LoadPlanner(cfg)
	if err != nil {
		t.Fatalf("LoadPlanner failed: %v", err)
	}
	sum1 := pc.Checksum()
	sum2 := pc.Checksum()
	if sum1 != sum2 {
		t.Fatal("Checksum should be stable for the same config")
	}

	cfg2, _ := LoadString("[planner]\nlinear_jerk_max: 60000000\n")
	pc2, err := LoadPlanner(cfg2)
	if err != nil {
		t.Fatalf("LoadPlanner failed: %v", err)
	}
	if pc2.Checksum() == sum1 {
		t.Fatal("Checksum should differ when the config differs")
	}
}
