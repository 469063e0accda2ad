package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/wfplan/internal/calibration"
	"github.com/specialistvlad/wfplan/internal/config"
	"github.com/specialistvlad/wfplan/internal/costs"
	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/estimator"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/resources"
	"github.com/specialistvlad/wfplan/internal/scheduler"
)

// costTable builds the job-type table, falling back to the Montage profile.
func costTable(m *config.Model) (*costs.Table, error) {
	if len(m.JobTypes) == 0 {
		return costs.Montage(), nil
	}
	t := costs.NewTable(nil)
	for _, name := range m.JobTypeNames() {
		jt := m.JobTypes[name]
		err := t.Set(name, costs.Profile{
			ExecTime:        jt.ExecTime,
			CommBefore:      jt.CommBefore,
			CommAfter:       jt.CommAfter,
			CPUInstructions: jt.CPUInstructions,
			DataSize:        jt.DataSize,
		})
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// catalog indexes the configured resource attributes by ID.
func catalog(m *config.Model) map[string]resources.Spec {
	out := make(map[string]resources.Spec, len(m.Resources))
	for id, r := range m.Resources {
		out[id] = resources.Spec{MIPS: r.MIPS, BasePower: r.BasePower, CPULoad: r.CPULoad}
	}
	return out
}

// loadCalibration merges profiled runs from dbPath, if given, with the
// configured factors. Configured factors win.
func loadCalibration(ctx context.Context, m *config.Model, dbPath string) (*calibration.Table, error) {
	logger := ctxlog.FromContext(ctx)
	table := calibration.NewTable()

	if dbPath != "" {
		store, err := calibration.OpenBoltStore(dbPath, 0o600)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		profiler := calibration.NewProfiler(nil)
		n, err := store.LoadInto(profiler)
		if err != nil {
			return nil, err
		}
		table = profiler.Table()
		logger.Debug("Calibration runs loaded.", "runs", n, "pairs", table.Len())
	}

	for _, c := range m.Calibrations {
		err := table.Set(c.JobType, c.ResourceID, calibration.Factors{TimeFactor: c.TimeFactor, EnergyFactor: c.EnergyFactor})
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}

func network(m *config.Model) (estimator.Network, float64) {
	if m.Network == nil {
		return estimator.Network{}, 0
	}
	n := m.Network
	return estimator.Network{Bandwidth: n.Bandwidth, Load: n.Load, Power: n.Power}, n.SourceLoad
}

// engineConfig combines the configuration model with command-line overrides.
func (app *App) engineConfig(ctx context.Context) (scheduler.Config, error) {
	m := app.model
	s := config.DefaultScheduler()
	if m.Scheduler != nil {
		s = m.Scheduler
	}

	policyName := s.Policy
	if app.config.Policy != "" {
		policyName = app.config.Policy
	}
	selectorName := s.Selector
	if app.config.Selector != "" {
		selectorName = app.config.Selector
	}
	energyAware := s.EnergyAware
	if app.config.EnergyAware != nil {
		energyAware = *app.config.EnergyAware
	}
	mipsAware := s.MIPSAware
	if app.config.MIPSAware != nil {
		mipsAware = *app.config.MIPSAware
	}
	referenceMIPS := s.ReferenceMIPS
	if app.config.ReferenceMIPS != nil {
		referenceMIPS = *app.config.ReferenceMIPS
	}

	policy, err := scheduler.ParsePolicy(policyName)
	if err != nil {
		return scheduler.Config{}, err
	}
	def, err := scheduler.ParseSelector(selectorName)
	if err != nil {
		return scheduler.Config{}, err
	}
	table, err := costTable(m)
	if err != nil {
		return scheduler.Config{}, err
	}

	cfg := scheduler.Config{
		Policy:        policy,
		Default:       def,
		Costs:         table,
		MIPSAware:     mipsAware,
		ReferenceMIPS: referenceMIPS,
	}
	if energyAware {
		cfg.Selectors = map[job.Preference]scheduler.ResourceSelector{job.Energy: scheduler.MinimumEnergy{}}
	}

	if m.Network != nil {
		cal, err := loadCalibration(ctx, m, app.config.CalibrationDB)
		if err != nil {
			return scheduler.Config{}, err
		}
		cfg.Estimator = estimator.New(cal)
		cfg.Network, cfg.SourceLoad = network(m)
	}

	ctxlog.FromContext(ctx).Debug("Engine configured.",
		"policy", policy.Name(),
		"selector", def.Name(),
		"energy_aware", energyAware,
		"mips_aware", mipsAware,
		"estimator", cfg.Estimator != nil,
		"job_types", table.Len(),
	)
	return cfg, nil
}

// loadResources reads the resource list and attaches catalog attributes.
func (app *App) loadResources(ctx context.Context) ([]*job.Resource, []resources.Entry, error) {
	entries, err := resources.Load(ctx, app.config.ResourcesPath)
	if err != nil {
		return nil, nil, err
	}
	cat := catalog(app.model)
	for _, e := range entries {
		if _, ok := cat[e.ID]; ok {
			continue
		}
		if _, host, isSlot := resources.SplitSlot(e.ID); isSlot {
			if _, ok := cat[host]; ok {
				continue
			}
		}
		if len(cat) > 0 {
			ctxlog.FromContext(ctx).Warn("Resource has no catalog entry.", "resource", e.ID)
		}
	}
	return resources.Build(entries, cat), entries, nil
}

func describe(r *job.Resource) string {
	if r.Processor == "" {
		return r.ID
	}
	return fmt.Sprintf("%s (%s)", r.ID, r.Processor)
}
