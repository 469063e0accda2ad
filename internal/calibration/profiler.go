package calibration

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Observation is one measured execution of a job on a resource.
type Observation struct {
	JobType    string
	ResourceID string
	// Duration of the run in seconds.
	Duration float64
	// Readings are power samples in watts, one per Interval.
	Readings []float64
	// Interval between readings in seconds. Zero means one second.
	Interval float64
	// CPULoads are per-sample utilisation percentages.
	CPULoads []float64
}

// Run is the reduced form of an observation that is kept and persisted.
type Run struct {
	JobType    string    `json:"job_type"`
	ResourceID string    `json:"resource_id"`
	Duration   float64   `json:"duration"`
	Energy     float64   `json:"total_energy"`
	AvgCPULoad float64   `json:"avg_cpu_load"`
	Timestamp  time.Time `json:"timestamp"`
}

// Profiler accumulates runs and derives factors relative to the first run
// of each (job type, resource) pair.
type Profiler struct {
	baseline map[string]float64
	runs     map[key][]Run
	now      func() time.Time
}

// NewProfiler creates a profiler. baseline maps resource ids to their idle
// power draw in watts; energy is measured above it.
func NewProfiler(baseline map[string]float64) *Profiler {
	b := make(map[string]float64, len(baseline))
	for k, v := range baseline {
		b[k] = v
	}
	return &Profiler{baseline: b, runs: make(map[key][]Run), now: time.Now}
}

// Record reduces an observation to a run, keeps it, and returns the factors
// of this single run against the baseline run. The first run of a pair
// always yields Neutral.
func (p *Profiler) Record(obs Observation) (Run, Factors, error) {
	if obs.JobType == "" || obs.ResourceID == "" {
		return Run{}, Factors{}, fmt.Errorf("observation needs both a job type and a resource id")
	}
	if obs.Duration < 0 {
		return Run{}, Factors{}, fmt.Errorf("observation %s/%s: negative duration %v", obs.JobType, obs.ResourceID, obs.Duration)
	}

	interval := obs.Interval
	if interval <= 0 {
		interval = 1
	}
	idle := p.baseline[obs.ResourceID]
	var energy float64
	for _, w := range obs.Readings {
		energy += (w - idle) * interval
	}
	energy = max(0, energy)

	run := Run{
		JobType:    obs.JobType,
		ResourceID: obs.ResourceID,
		Duration:   obs.Duration,
		Energy:     energy,
		AvgCPULoad: mean(obs.CPULoads),
		Timestamp:  p.now().UTC(),
	}

	k := key{obs.JobType, obs.ResourceID}
	f := Neutral
	if prior := p.runs[k]; len(prior) > 0 {
		first := prior[0]
		f = Factors{
			TimeFactor:   ratio(run.Duration, first.Duration),
			EnergyFactor: ratio(run.Energy, first.Energy),
		}
	}
	p.runs[k] = append(p.runs[k], run)
	return run, f, nil
}

// Add keeps an already reduced run, e.g. one loaded from a store. Runs of a
// pair must be added in the order they were observed.
func (p *Profiler) Add(run Run) {
	k := key{run.JobType, run.ResourceID}
	p.runs[k] = append(p.runs[k], run)
}

// Factors returns the mean of all runs of a pair relative to its first run.
func (p *Profiler) Factors(jobType, resourceID string) (Factors, bool) {
	runs := p.runs[key{jobType, resourceID}]
	if len(runs) == 0 {
		return Neutral, false
	}
	var durations, energies []float64
	for _, r := range runs {
		durations = append(durations, r.Duration)
		energies = append(energies, r.Energy)
	}
	return Factors{
		TimeFactor:   ratio(mean(durations), runs[0].Duration),
		EnergyFactor: ratio(mean(energies), runs[0].Energy),
	}, true
}

// Table exports the derived factors of every profiled pair.
func (p *Profiler) Table() *Table {
	t := NewTable()
	for k := range p.runs {
		f, _ := p.Factors(k.jobType, k.resource)
		// Factors are positive by construction.
		t.entries[k] = f
	}
	return t
}

// Runs returns every kept run, grouped by job type then resource.
func (p *Profiler) Runs() []Run {
	keys := make([]key, 0, len(p.runs))
	for k := range p.runs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b key) int {
		return cmp.Or(cmp.Compare(a.jobType, b.jobType), cmp.Compare(a.resource, b.resource))
	})
	var out []Run
	for _, k := range keys {
		out = append(out, p.runs[k]...)
	}
	return out
}

// ratio divides against a baseline; a zero baseline gives 1.
func ratio(v, base float64) float64 {
	if base == 0 {
		return 1
	}
	return v / base
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
