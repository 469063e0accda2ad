package app

import (
	"context"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/estimator"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/probe"
)

// runEstimate prints the ECT and EEC of one job type on each resource.
func (app *App) runEstimate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	table, err := costTable(app.model)
	if err != nil {
		return err
	}
	profile, known := table.Lookup(app.config.JobType)
	if !known {
		logger.Warn("Unknown job type, estimating with a zero profile.", "job_type", app.config.JobType)
	}

	candidates, err := app.estimateTargets(ctx)
	if err != nil {
		return err
	}

	cal, err := loadCalibration(ctx, app.model, app.config.CalibrationDB)
	if err != nil {
		return err
	}
	est := estimator.New(cal)
	net, sourceLoad := network(app.model)
	if app.config.SourceLoad > 0 {
		sourceLoad = app.config.SourceLoad
	}

	load := app.config.CPULoad
	if app.config.Probe {
		load, err = probe.New().CPULoad(ctx, app.config.ProbeInterval)
		if err != nil {
			return fmt.Errorf("failed to probe cpu load: %w", err)
		}
		logger.Info("Using probed CPU load.", "cpu_load", load)
	}

	w := estimator.WorkloadOf(app.config.JobType, profile)
	tw := tabwriter.NewWriter(app.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE\tECT (s)\tTRANSFER (s)\tCOMPUTE (s)\tEEC (J)\tPOWER (W)\tEEC (kWh)\tCOST")
	for _, r := range candidates {
		state := estimator.State{CPULoad: max(load, r.CPULoad)}
		timing, err := est.Timing(w, r, state, estimator.State{CPULoad: sourceLoad}, net)
		if err != nil {
			return fmt.Errorf("resource %s: %w", r.ID, err)
		}
		e, err := est.EstimateEnergy(w, r, state, estimator.State{CPULoad: sourceLoad}, net)
		if err != nil {
			return fmt.Errorf("resource %s: %w", r.ID, err)
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.6f\t%.6f\n",
			describe(r),
			timing.Total(), timing.Transfer, timing.Compute,
			e.Joules, e.Watts,
			estimator.JoulesToKWh(e.Joules),
			estimator.EnergyCost(e.Joules, app.config.PricePerKWh),
		)
	}
	return tw.Flush()
}

// estimateTargets returns the resources to estimate on: the resource list
// when given, otherwise the configured catalog, optionally narrowed to one ID.
func (app *App) estimateTargets(ctx context.Context) ([]*job.Resource, error) {
	var out []*job.Resource
	if app.config.ResourcesPath != "" {
		res, _, err := app.loadResources(ctx)
		if err != nil {
			return nil, err
		}
		out = res
	} else {
		ids := make([]string, 0, len(app.model.Resources))
		for id := range app.model.Resources {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			r := app.model.Resources[id]
			out = append(out, &job.Resource{ID: id, MIPS: r.MIPS, BasePower: r.BasePower, CPULoad: r.CPULoad})
		}
	}

	if id := app.config.ResourceID; id != "" {
		out = slices.DeleteFunc(out, func(r *job.Resource) bool { return r.ID != id })
		if len(out) == 0 {
			return nil, fmt.Errorf("resource %q is not configured", id)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no resources to estimate on: configure resource blocks or pass a resource list")
	}
	return out, nil
}
