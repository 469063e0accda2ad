package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level blocks from any file.
type fileRoot struct {
	JobTypes     []*JobType     `hcl:"job_type,block"`
	Resources    []*Resource    `hcl:"resource,block"`
	Networks     []*Network     `hcl:"network,block"`
	Calibrations []*Calibration `hcl:"calibration,block"`
	Schedulers   []*Scheduler   `hcl:"scheduler,block"`
	Remain       hcl.Body       `hcl:",remain"`
}

// JobType maps a `job_type "<name>" { ... }` block.
type JobType struct {
	Name            string  `hcl:"name,label"`
	ExecTime        float64 `hcl:"exec_time"`
	CommBefore      float64 `hcl:"comm_before,optional"`
	CommAfter       float64 `hcl:"comm_after,optional"`
	CPUInstructions float64 `hcl:"cpu_instructions,optional"`
	DataSize        float64 `hcl:"data_size,optional"`
}

// Resource maps a `resource "<id>" { ... }` block.
type Resource struct {
	ID        string  `hcl:"id,label"`
	MIPS      float64 `hcl:"mips"`
	BasePower float64 `hcl:"base_power,optional"`
	CPULoad   float64 `hcl:"cpu_load,optional"`
}

// Network maps the `network { ... }` block.
type Network struct {
	Bandwidth  float64 `hcl:"bandwidth"`
	Load       float64 `hcl:"load,optional"`
	Power      float64 `hcl:"network_power,optional"`
	SourceLoad float64 `hcl:"source_load,optional"`
}

// Calibration maps a `calibration "<job_type>" "<resource>" { ... }` block.
// Omitted factors stay neutral.
type Calibration struct {
	JobType      string   `hcl:"job_type,label"`
	ResourceID   string   `hcl:"resource,label"`
	TimeFactor   *float64 `hcl:"time_factor,optional"`
	EnergyFactor *float64 `hcl:"energy_factor,optional"`
}

// Scheduler maps the `scheduler { ... }` block.
type Scheduler struct {
	Policy        *string  `hcl:"policy,optional"`
	Selector      *string  `hcl:"selector,optional"`
	EnergyAware   *bool    `hcl:"energy_aware,optional"`
	MIPSAware     *bool    `hcl:"mips_aware,optional"`
	ReferenceMIPS *float64 `hcl:"reference_mips,optional"`
}
