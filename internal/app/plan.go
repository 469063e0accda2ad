package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/dagfile"
	"github.com/specialistvlad/wfplan/internal/graph"
	"github.com/specialistvlad/wfplan/internal/inmemorytopology"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/report"
	"github.com/specialistvlad/wfplan/internal/resources"
	"github.com/specialistvlad/wfplan/internal/scheduler"
)

// runPlan loads the workflows and resources, plans them and writes the report.
func (app *App) runPlan(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	cfg, err := app.engineConfig(ctx)
	if err != nil {
		return err
	}
	engine, err := scheduler.New(cfg)
	if err != nil {
		return err
	}

	res, entries, err := app.loadResources(ctx)
	if err != nil {
		return err
	}
	logger.Info("Resources loaded.", "count", len(res), "resources", resources.Compress(resources.IDs(entries)))

	g, err := app.loadWorkflows(ctx)
	if err != nil {
		return err
	}

	l, err := engine.Schedule(ctx, g, res)
	if err != nil {
		return err
	}

	opts := report.Options{
		IncludePreference: engine.Policy().Name() != (scheduler.HEFT{}).Name(),
		Policy:            engine.Policy().Name(),
		TotalEnergy:       l.TotalEnergy(res),
	}
	if err := report.Write(app.config.OutputPath, l, opts); err != nil {
		return err
	}

	logger.Info("📄 Schedule written.",
		"output", app.config.OutputPath,
		"summary", report.SummaryPath(app.config.OutputPath),
		"jobs", l.JobCount(),
		"makespan", l.Makespan(),
	)
	fmt.Fprintf(app.outW, "Schedule has been written to %s\n", app.config.OutputPath)
	fmt.Fprintf(app.outW, "Summary has been written to %s\n", report.SummaryPath(app.config.OutputPath))
	return nil
}

// loadWorkflows parses every workflow folder into one combined graph. The
// workflows are numbered in command-line order.
func (app *App) loadWorkflows(ctx context.Context) (*graph.Manager, error) {
	logger := ctxlog.FromContext(ctx)
	g := graph.New(inmemorytopology.New())

	for i, src := range app.config.Workflows {
		pref, err := job.ParsePreference(src.Preference)
		if err != nil {
			logger.Warn("Invalid preference, using balanced.", "folder", src.Folder, "preference", src.Preference)
			pref = job.Balanced
		}

		id := fmt.Sprintf("workflow_%d", i+1)
		wf, err := dagfile.LoadFolder(ctx, src.Folder, id)
		if err != nil {
			return nil, fmt.Errorf("workflow %s: %w", src.Folder, err)
		}
		if err := wf.AddTo(ctx, g, pref, src.Weight); err != nil {
			return nil, fmt.Errorf("workflow %s: %w", src.Folder, err)
		}
		logger.Info("Workflow loaded.", "workflow", id, "folder", wf.Path, "preference", pref, "jobs", len(wf.Jobs), "edges", len(wf.Edges))
	}
	return g, nil
}
