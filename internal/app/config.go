package app

import (
	"errors"
	"fmt"
	"time"
)

// Command selects what the App does.
type Command string

const (
	CommandPlan      Command = "plan"
	CommandEstimate  Command = "estimate"
	CommandCalibrate Command = "calibrate"
	CommandAllocator Command = "allocator"
)

// DefaultWeight is the preference weight of a workflow given without one.
const DefaultWeight = 5

// WorkflowSource is one workflow folder to plan. Preference is kept as
// typed so that an unknown value can be reported through the app logger.
type WorkflowSource struct {
	Folder     string
	Preference string
	Weight     float64
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command     Command
	ConfigPaths []string // hcl files or directories

	LogFormat string
	LogLevel  string

	// ResourcesPath is the resource list file used by plan, estimate and allocator.
	ResourcesPath string
	// CalibrationDB is the bolt file holding profiled runs.
	CalibrationDB string

	// plan
	Workflows     []WorkflowSource
	OutputPath    string
	Policy        string
	Selector      string
	EnergyAware   *bool
	MIPSAware     *bool
	ReferenceMIPS *float64

	// estimate
	JobType       string
	ResourceID    string
	CPULoad       float64
	SourceLoad    float64
	Probe         bool
	ProbeInterval time.Duration
	PricePerKWh   float64

	// calibrate
	ObservationsPath string

	// allocator
	ListenAddr   string
	StatePath    string
	SaveInterval time.Duration
}

// NewConfig validates cfg for its command. An empty log level or format
// becomes info or text.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = LogFormatText
	}
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := checkLogFormat(cfg.LogFormat); err != nil {
		return nil, err
	}

	switch cfg.Command {
	case CommandPlan:
		if len(cfg.Workflows) == 0 {
			return nil, errors.New("at least one workflow folder must be specified")
		}
		if cfg.ResourcesPath == "" {
			return nil, errors.New("a resource list is required")
		}
		if cfg.OutputPath == "" {
			return nil, errors.New("an output path is required")
		}
		for _, wf := range cfg.Workflows {
			if wf.Folder == "" {
				return nil, errors.New("workflow folder must not be empty")
			}
			if wf.Weight < 0 || wf.Weight > 10 {
				return nil, fmt.Errorf("workflow %s: weight must be in [0, 10], got %v", wf.Folder, wf.Weight)
			}
		}
		if cfg.ReferenceMIPS != nil && *cfg.ReferenceMIPS < 0 {
			return nil, errors.New("reference mips must not be negative")
		}
	case CommandEstimate:
		if cfg.JobType == "" {
			return nil, errors.New("a job type is required")
		}
		if cfg.CPULoad < 0 || cfg.CPULoad > 100 || cfg.SourceLoad < 0 || cfg.SourceLoad > 100 {
			return nil, errors.New("cpu loads must be percentages between 0 and 100")
		}
		if cfg.Probe && cfg.ProbeInterval <= 0 {
			return nil, errors.New("probe interval must be positive")
		}
	case CommandCalibrate:
		if cfg.CalibrationDB == "" {
			return nil, errors.New("a calibration database is required")
		}
	case CommandAllocator:
		if cfg.ResourcesPath == "" {
			return nil, errors.New("a resource list is required")
		}
		if cfg.ListenAddr == "" {
			return nil, errors.New("a listen address is required")
		}
		if cfg.SaveInterval <= 0 {
			return nil, errors.New("save interval must be positive")
		}
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}
	return &cfg, nil
}
