package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/wfplan/internal/calibration"
	"github.com/specialistvlad/wfplan/internal/ctxlog"
)

// observationRecord is one line of an observations file.
type observationRecord struct {
	JobType    string    `json:"job_type"`
	ResourceID string    `json:"resource_id"`
	Duration   float64   `json:"duration"`
	Readings   []float64 `json:"readings"`
	Interval   float64   `json:"interval"`
	CPULoads   []float64 `json:"cpu_loads"`
}

// runCalibrate records new observations into the calibration database and
// prints the resulting factors as HCL calibration blocks.
func (app *App) runCalibrate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	store, err := calibration.OpenBoltStore(app.config.CalibrationDB, 0o600)
	if err != nil {
		return err
	}
	defer store.Close()

	baseline := make(map[string]float64, len(app.model.Resources))
	for id, r := range app.model.Resources {
		baseline[id] = r.BasePower
	}
	profiler := calibration.NewProfiler(baseline)
	loaded, err := store.LoadInto(profiler)
	if err != nil {
		return err
	}
	logger.Debug("Existing calibration runs loaded.", "runs", loaded)

	if app.config.ObservationsPath != "" {
		recorded, err := app.recordObservations(ctx, store, profiler)
		if err != nil {
			return err
		}
		logger.Info("Observations recorded.", "count", recorded)
	}

	return writeCalibrationBlocks(app.outW, profiler)
}

func (app *App) recordObservations(ctx context.Context, store *calibration.BoltStore, p *calibration.Profiler) (int, error) {
	logger := ctxlog.FromContext(ctx)

	f, err := os.Open(app.config.ObservationsPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open observations: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	n := 0
	for {
		var rec observationRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, fmt.Errorf("observation %d: %w", n+1, err)
		}
		run, factors, err := p.Record(calibration.Observation{
			JobType:    rec.JobType,
			ResourceID: rec.ResourceID,
			Duration:   rec.Duration,
			Readings:   rec.Readings,
			Interval:   rec.Interval,
			CPULoads:   rec.CPULoads,
		})
		if err != nil {
			return n, fmt.Errorf("observation %d: %w", n+1, err)
		}
		if err := store.Save(run); err != nil {
			return n, err
		}
		n++
		logger.Debug("Observation recorded.",
			"job_type", run.JobType,
			"resource", run.ResourceID,
			"energy", run.Energy,
			"time_factor", factors.TimeFactor,
			"energy_factor", factors.EnergyFactor,
		)
	}
}

// writeCalibrationBlocks prints the profiled factors in the config format.
func writeCalibrationBlocks(w io.Writer, p *calibration.Profiler) error {
	seen := make(map[[2]string]bool)
	for _, run := range p.Runs() {
		k := [2]string{run.JobType, run.ResourceID}
		if seen[k] {
			continue
		}
		seen[k] = true
		f, _ := p.Factors(run.JobType, run.ResourceID)
		_, err := fmt.Fprintf(w, "calibration %q %q {\n  time_factor   = %.4f\n  energy_factor = %.4f\n}\n",
			run.JobType, run.ResourceID, f.TimeFactor, f.EnergyFactor)
		if err != nil {
			return err
		}
	}
	return nil
}
