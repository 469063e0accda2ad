package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/wfplan/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const usage = `
wfplan - A preference-aware multi-workflow HEFT planner.

Usage:
  wfplan <command> [options]

Commands:
  plan        Plan workflow folders onto a resource list and write a CSV schedule.
  estimate    Print the estimated completion time and energy of a job type.
  calibrate   Record profiled runs and print calibration factors.
  allocator   Serve the resource allocation API.

Run 'wfplan <command> -h' for the options of a command.
`

// common holds the flags every command accepts.
type common struct {
	configPaths stringList
	logFormat   *string
	logLevel    *string
}

func newFlagSet(name, description string, output io.Writer) (*flag.FlagSet, *common) {
	fs := flag.NewFlagSet("wfplan "+name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "\n%s\n\nUsage:\n  wfplan %s [options]\n\nOptions:\n", description, name)
		fs.PrintDefaults()
	}

	c := &common{}
	fs.Var(&c.configPaths, "config", "Path to an .hcl file or a directory of them. Repeatable.")
	c.logFormat = fs.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	c.logLevel = fs.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	return fs, c
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	if len(args) == 0 {
		fmt.Fprint(output, usage)
		return nil, true, nil
	}

	command, rest := args[0], args[1:]
	var (
		cfg *app.Config
		err error
	)
	switch command {
	case "-h", "-help", "--help", "help":
		fmt.Fprint(output, usage)
		return nil, true, nil
	case string(app.CommandPlan):
		cfg, err = parsePlan(rest, output)
	case string(app.CommandEstimate):
		cfg, err = parseEstimate(rest, output)
	case string(app.CommandCalibrate):
		cfg, err = parseCalibrate(rest, output)
	case string(app.CommandAllocator):
		cfg, err = parseAllocator(rest, output)
	default:
		fmt.Fprint(output, usage)
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", command)}
	}

	if errors.Is(err, flag.ErrHelp) {
		return nil, true, nil
	}
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "command", cfg.Command)
	return cfg, false, nil
}

// finish attaches the common flags and validates the final config.
func finish(cfg app.Config, c *common) (*app.Config, error) {
	cfg.ConfigPaths = c.configPaths
	cfg.LogFormat = strings.ToLower(*c.logFormat)
	cfg.LogLevel = strings.ToLower(*c.logLevel)

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return validated, nil
}

func parsePlan(args []string, output io.Writer) (*app.Config, error) {
	fs, c := newFlagSet("plan", "Plan one or more workflow folders onto a resource list.", output)

	var workflows workflowList
	var energyAware, mipsAware optionalBool
	var referenceMIPS optionalFloat
	fs.Var(&workflows, "workflow", "Workflow as folder,preference[,weight]. Preference is performance, balanced or energy. Repeatable.")
	resourcesPath := fs.String("resources", "", "Path to the resource list file.")
	outputPath := fs.String("output", "schedule.csv", "Output schedule file (CSV).")
	policy := fs.String("policy", "", "Scheduling policy: tiered, weighted or heft. Overrides the config file.")
	selector := fs.String("selector", "", "Default resource selector: earliest_start, earliest_finish or minimum_energy.")
	fs.Var(&energyAware, "energy-aware", "Place energy-preference jobs on the minimum-energy resource.")
	fs.Var(&mipsAware, "mips-aware", "Scale execution times by resource MIPS.")
	fs.Var(&referenceMIPS, "reference-mips", "MIPS rating the configured execution times refer to.")
	calibrationDB := fs.String("calibration-db", "", "Bolt file with profiled runs to calibrate estimates.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return finish(app.Config{
		Command:       app.CommandPlan,
		Workflows:     workflows,
		ResourcesPath: *resourcesPath,
		OutputPath:    *outputPath,
		Policy:        *policy,
		Selector:      *selector,
		EnergyAware:   energyAware.value,
		MIPSAware:     mipsAware.value,
		ReferenceMIPS: referenceMIPS.value,
		CalibrationDB: *calibrationDB,
	}, c)
}

func parseEstimate(args []string, output io.Writer) (*app.Config, error) {
	fs, c := newFlagSet("estimate", "Estimate completion time and energy of a job type per resource.", output)

	jobType := fs.String("job-type", "", "Job type to estimate, e.g. mProject.")
	resourceID := fs.String("resource", "", "Only estimate on this resource ID.")
	resourcesPath := fs.String("resources", "", "Resource list file. Defaults to the configured resource blocks.")
	cpuLoad := fs.Float64("cpu-load", 0, "CPU load percentage of the target host.")
	sourceLoad := fs.Float64("source-load", 0, "CPU load percentage of the data source host.")
	probe := fs.Bool("probe", false, "Measure the local CPU load instead of using -cpu-load.")
	probeInterval := fs.Duration("probe-interval", time.Second, "Sampling window for -probe.")
	price := fs.Float64("price-per-kwh", 0, "Energy tariff used for the cost column.")
	calibrationDB := fs.String("calibration-db", "", "Bolt file with profiled runs.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return finish(app.Config{
		Command:       app.CommandEstimate,
		JobType:       *jobType,
		ResourceID:    *resourceID,
		ResourcesPath: *resourcesPath,
		CPULoad:       *cpuLoad,
		SourceLoad:    *sourceLoad,
		Probe:         *probe,
		ProbeInterval: *probeInterval,
		PricePerKWh:   *price,
		CalibrationDB: *calibrationDB,
	}, c)
}

func parseCalibrate(args []string, output io.Writer) (*app.Config, error) {
	fs, c := newFlagSet("calibrate", "Record profiled runs and print calibration blocks.", output)

	db := fs.String("db", "calibration.db", "Bolt file holding the profiled runs.")
	observations := fs.String("observations", "", "JSON lines file of new observations to record.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return finish(app.Config{
		Command:          app.CommandCalibrate,
		CalibrationDB:    *db,
		ObservationsPath: *observations,
	}, c)
}

func parseAllocator(args []string, output io.Writer) (*app.Config, error) {
	fs, c := newFlagSet("allocator", "Serve the resource allocation API.", output)

	resourcesPath := fs.String("resources", "resources.txt", "Resource list file.")
	listen := fs.String("listen", ":8000", "Address to serve the API on.")
	state := fs.String("state", "allocator.db", "Bolt file the allocation state is saved to.")
	interval := fs.Duration("save-interval", 5*time.Second, "How often to save the allocation state.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return finish(app.Config{
		Command:       app.CommandAllocator,
		ResourcesPath: *resourcesPath,
		ListenAddr:    *listen,
		StatePath:     *state,
		SaveInterval:  *interval,
	}, c)
}
