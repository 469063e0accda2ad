package config

import (
	"fmt"
	"slices"
)

// Model is the unified, format-agnostic representation of the planning
// configuration. Empty sections mean "use the built-in defaults".
type Model struct {
	JobTypes     map[string]*JobType
	Resources    map[string]*Resource
	Network      *Network
	Calibrations []*Calibration
	Scheduler    *Scheduler
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		JobTypes:  make(map[string]*JobType),
		Resources: make(map[string]*Resource),
	}
}

// JobType is the cost profile of one job type. Times are in seconds, sizes
// in bytes.
type JobType struct {
	Name            string
	ExecTime        float64
	CommBefore      float64
	CommAfter       float64
	CPUInstructions float64
	DataSize        float64
}

// Resource is a catalog entry. Entries are matched to the resource list by ID.
type Resource struct {
	ID        string
	MIPS      float64
	BasePower float64
	CPULoad   float64
}

// Network describes the data path. Bandwidth is in bytes per second.
type Network struct {
	Bandwidth  float64
	Load       float64
	Power      float64
	SourceLoad float64
}

// Calibration holds correction factors for one (job type, resource) pair.
type Calibration struct {
	JobType      string
	ResourceID   string
	TimeFactor   float64
	EnergyFactor float64
}

// Scheduler holds engine settings.
type Scheduler struct {
	Policy        string
	Selector      string
	EnergyAware   bool
	MIPSAware     bool
	ReferenceMIPS float64
}

// DefaultScheduler is used when no scheduler block is configured.
func DefaultScheduler() *Scheduler {
	return &Scheduler{Policy: "tiered", Selector: "earliest_start"}
}

// JobTypeNames returns the configured job types, sorted.
func (m *Model) JobTypeNames() []string {
	names := make([]string, 0, len(m.JobTypes))
	for name := range m.JobTypes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks value ranges that every loader must enforce.
func (m *Model) Validate() error {
	for _, name := range m.JobTypeNames() {
		jt := m.JobTypes[name]
		if jt.ExecTime < 0 || jt.CommBefore < 0 || jt.CommAfter < 0 || jt.CPUInstructions < 0 || jt.DataSize < 0 {
			return fmt.Errorf("job_type %q: values must not be negative", name)
		}
	}
	for id, r := range m.Resources {
		if r.MIPS < 0 || r.BasePower < 0 {
			return fmt.Errorf("resource %q: mips and base_power must not be negative", id)
		}
		if r.CPULoad < 0 || r.CPULoad > 100 {
			return fmt.Errorf("resource %q: cpu_load must be a percentage, got %v", id, r.CPULoad)
		}
	}
	if n := m.Network; n != nil {
		if n.Bandwidth < 0 || n.Power < 0 {
			return fmt.Errorf("network: bandwidth and network_power must not be negative")
		}
		if n.Load < 0 || n.Load >= 100 {
			return fmt.Errorf("network: load must be in [0, 100), got %v", n.Load)
		}
	}
	for _, c := range m.Calibrations {
		if c.TimeFactor <= 0 || c.EnergyFactor <= 0 {
			return fmt.Errorf("calibration %s/%s: factors must be positive", c.JobType, c.ResourceID)
		}
	}
	if s := m.Scheduler; s != nil && s.ReferenceMIPS < 0 {
		return fmt.Errorf("scheduler: reference_mips must not be negative")
	}
	return nil
}
