package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario describes a department to build, loadable from a YAML file.
// Omitted stages keep their default duration and a zero cost; omitted
// severity levels produce no automatic arrivals.
type Scenario struct {
	Name     string                 `yaml:"name"`
	Seed     int64                  `yaml:"seed"`
	Staff    []StaffConfig          `yaml:"staff"`
	Rooms    []RoomConfig           `yaml:"rooms"`
	Arrivals map[int]DistSpec       `yaml:"arrivals"`
	Stages   map[string]StageConfig `yaml:"stages"`
	Patients []AdmissionConfig      `yaml:"patients"`
}

// StaffConfig adds Count staff members of one role. A named entry adds one.
type StaffConfig struct {
	Role    string `yaml:"role"`
	Count   int    `yaml:"count"`
	Name    string `yaml:"name"`
	Surname string `yaml:"surname"`
}

// RoomConfig adds one room.
type RoomConfig struct {
	Type     string `yaml:"type"`
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}

// StageConfig overrides a stage's duration law and cost. Nil fields keep defaults.
type StageConfig struct {
	Duration *DistSpec `yaml:"duration"`
	Cost     *float64  `yaml:"cost"`
}

// AdmissionConfig admits one named patient when the scenario is built.
// Level 0 takes the level of the earliest scheduled arrival.
type AdmissionConfig struct {
	Name      string `yaml:"name"`
	Surname   string `yaml:"surname"`
	Insurance string `yaml:"insurance"`
	Level     int    `yaml:"level"`
}

// LoadScenario reads and strictly parses a YAML scenario file.
// Unknown keys are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario strictly parses YAML scenario data.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks names, ranges and distribution parameters without building anything.
func (sc *Scenario) Validate() error {
	if strings.TrimSpace(sc.Name) == "" {
		return fmt.Errorf("scenario name must not be empty")
	}
	for i, s := range sc.Staff {
		if _, err := ParseRole(s.Role); err != nil {
			return fmt.Errorf("staff[%d]: %w", i, err)
		}
		if s.Count < 0 {
			return fmt.Errorf("staff[%d]: count must be non-negative, got %d", i, s.Count)
		}
		if (s.Name != "" || s.Surname != "") && s.Count > 1 {
			return fmt.Errorf("staff[%d]: a named entry adds exactly one staff member, got count %d", i, s.Count)
		}
	}
	for i, r := range sc.Rooms {
		if _, err := ParseRoomType(r.Type); err != nil {
			return fmt.Errorf("rooms[%d]: %w", i, err)
		}
		if r.Capacity < 1 {
			return fmt.Errorf("rooms[%d]: capacity %d must be at least 1: %w", i, r.Capacity, ErrInvalidCapacity)
		}
	}
	for level, spec := range sc.Arrivals {
		if level < MinSeverity || level > MaxSeverity {
			return fmt.Errorf("arrivals: level %d: %w", level, ErrUnknownLevel)
		}
		dist, err := spec.Build(nil)
		if err != nil {
			return fmt.Errorf("arrivals: level %d: %w", level, err)
		}
		if dist.Mean() <= 0 {
			return fmt.Errorf("arrivals: level %d: inter-arrival mean must be positive: %w", level, ErrInvalidParams)
		}
	}
	for name, cfg := range sc.Stages {
		if _, ok := lookupStageKind(name); !ok {
			return fmt.Errorf("stages: %q: %w", name, ErrUnknownStage)
		}
		if cfg.Duration != nil {
			if _, err := cfg.Duration.Build(nil); err != nil {
				return fmt.Errorf("stages: %s duration: %w", name, err)
			}
		}
		if cfg.Cost != nil && (math.IsNaN(*cfg.Cost) || math.IsInf(*cfg.Cost, 0) || *cfg.Cost < 0) {
			return fmt.Errorf("stages: %s cost %v: %w", name, *cfg.Cost, ErrInvalidCost)
		}
	}
	for i, p := range sc.Patients {
		if _, err := ParseInsurance(p.Insurance); err != nil {
			return fmt.Errorf("patients[%d]: %w", i, err)
		}
		if p.Level != 0 && (p.Level < MinSeverity || p.Level > MaxSeverity) {
			return fmt.Errorf("patients[%d]: level %d: %w", i, p.Level, ErrUnknownLevel)
		}
	}
	return nil
}

// Build validates the scenario and creates the department it describes.
// Setters run in a fixed order (resources, stages, arrivals by level,
// admissions) so a scenario always yields the same department.
func (sc *Scenario) Build() (*Department, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	d := NewDepartment(sc.Name, sc.Seed)

	for _, s := range sc.Staff {
		if s.Name != "" || s.Surname != "" {
			if _, err := d.AddNamedStaff(s.Role, s.Name, s.Surname); err != nil {
				return nil, err
			}
			continue
		}
		for n := 0; n < s.Count; n++ {
			if _, err := d.AddStaff(s.Role); err != nil {
				return nil, err
			}
		}
	}
	for _, r := range sc.Rooms {
		if _, err := d.AddRoom(r.Type, r.Name, r.Capacity); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(sc.Stages))
	for name := range sc.Stages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cfg := sc.Stages[name]
		if cfg.Duration != nil {
			if err := d.SetStageDuration(name, cfg.Duration.Type, cfg.Duration.Params...); err != nil {
				return nil, err
			}
		}
		if cfg.Cost != nil {
			if err := d.SetStageCost(name, *cfg.Cost); err != nil {
				return nil, err
			}
		}
	}

	for level := MinSeverity; level <= MaxSeverity; level++ {
		spec, ok := sc.Arrivals[level]
		if !ok {
			continue
		}
		if err := d.SetArrivalDistribution(level, spec.Type, spec.Params...); err != nil {
			return nil, err
		}
	}

	for i, p := range sc.Patients {
		if _, err := d.AdmitPatient(p.Name, p.Surname, p.Insurance, p.Level); err != nil {
			return nil, fmt.Errorf("patients[%d]: %w", i, err)
		}
	}
	return d, nil
}

// lookupStageKind resolves a stage name, case-insensitively.
func lookupStageKind(name string) (StageKind, bool) {
	for _, kind := range StageKinds {
		if strings.EqualFold(kind.String(), name) {
			return kind, true
		}
	}
	return 0, false
}
