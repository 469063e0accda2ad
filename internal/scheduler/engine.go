package scheduler

import (
	"context"
	"fmt"

	"github.com/specialistvlad/wfplan/internal/costs"
	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/estimator"
	"github.com/specialistvlad/wfplan/internal/graph"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/ledger"
	"github.com/specialistvlad/wfplan/internal/rank"
)

// Config assembles an Engine.
type Config struct {
	// Policy defaults to Tiered.
	Policy Policy
	// Selectors maps preference classes to resource selectors. Classes
	// without an entry use Default.
	Selectors map[job.Preference]ResourceSelector
	// Default defaults to EarliestStart.
	Default ResourceSelector

	Costs *costs.Table
	// Estimator prices jobs that carry an instruction or data profile. Jobs
	// without one, or all jobs when nil, cost base power times duration.
	Estimator *estimator.Estimator
	Network   estimator.Network
	// SourceLoad is the CPU load of the host data is staged from.
	SourceLoad float64

	// MIPSAware scales execution times by ReferenceMIPS / resource MIPS.
	MIPSAware bool
	// ReferenceMIPS defaults to the fastest resource of each run.
	ReferenceMIPS float64
}

// Engine plans graphs onto resources.
type Engine struct {
	cfg Config
}

// New validates the configuration and fills in defaults.
func New(cfg Config) (*Engine, error) {
	if cfg.ReferenceMIPS < 0 {
		return nil, fmt.Errorf("reference mips must not be negative, got %v", cfg.ReferenceMIPS)
	}
	if cfg.Policy == nil {
		cfg.Policy = Tiered{}
	}
	if cfg.Default == nil {
		cfg.Default = EarliestStart{}
	}
	if cfg.Costs == nil {
		cfg.Costs = costs.NewTable(nil)
	}
	selectors := make(map[job.Preference]ResourceSelector, len(job.Preferences))
	for _, p := range job.Preferences {
		if s, ok := cfg.Selectors[p]; ok && s != nil {
			selectors[p] = s
		} else {
			selectors[p] = cfg.Default
		}
	}
	cfg.Selectors = selectors
	return &Engine{cfg: cfg}, nil
}

// Policy returns the configured policy.
func (e *Engine) Policy() Policy { return e.cfg.Policy }

// Schedule ranks and plans every job of g. The caller's resources are not
// modified. On success the returned ledger is sealed and validated.
func (e *Engine) Schedule(ctx context.Context, g graph.Graph, resources []*job.Resource) (*ledger.Ledger, error) {
	logger := ctxlog.FromContext(ctx)

	if len(resources) == 0 {
		return nil, ErrResourceListEmpty
	}

	if _, err := rank.NewCalculator(e.cfg.Costs).Annotate(ctx, g); err != nil {
		return nil, err
	}

	r := &Run{
		engine:    e,
		graph:     g,
		resources: job.CloneResources(resources),
		ledger:    ledger.New(g.Workflows(ctx), g.EdgeCount(ctx)),
	}
	r.referenceMIPS = e.cfg.ReferenceMIPS
	if r.referenceMIPS == 0 {
		for _, res := range r.resources {
			r.referenceMIPS = max(r.referenceMIPS, res.MIPS)
		}
	}

	logger.Info("🗓️ Scheduling started.",
		"policy", e.cfg.Policy.Name(),
		"run_id", r.ledger.RunID(),
		"jobs", len(g.Jobs(ctx)),
		"resources", len(r.resources),
	)

	if err := e.cfg.Policy.Schedule(ctx, r); err != nil {
		return nil, err
	}

	if err := r.ledger.Validate(ctx, g, e.cfg.Costs); err != nil {
		return nil, fmt.Errorf("schedule failed validation: %w", err)
	}
	r.ledger.Seal()

	logger.Info("✅ Scheduling finished.",
		"jobs", r.ledger.JobCount(),
		"makespan", r.ledger.Makespan(),
	)
	return r.ledger, nil
}

// Run is the mutable state of one Schedule call, shared with the policy.
type Run struct {
	engine        *Engine
	graph         graph.Graph
	resources     []*job.Resource
	ledger        *ledger.Ledger
	counter       int
	referenceMIPS float64
}

// Graph returns the graph being planned.
func (r *Run) Graph() graph.Graph { return r.graph }

// Resources returns the run's own copies of the resources.
func (r *Run) Resources() []*job.Resource { return r.resources }

// SelectorFor returns the selector configured for a preference class.
func (r *Run) SelectorFor(p job.Preference) ResourceSelector {
	return r.engine.cfg.Selectors[p]
}

// DefaultSelector returns the selector used by preference-free policies.
func (r *Run) DefaultSelector() ResourceSelector {
	return r.engine.cfg.Default
}

// Duration is the execution time of j on res.
func (r *Run) Duration(j *job.Job, res *job.Resource) float64 {
	exec := r.engine.cfg.Costs.Profile(j.Type).ExecTime
	if !r.engine.cfg.MIPSAware || res.MIPS <= 0 || r.referenceMIPS <= 0 {
		return exec
	}
	return exec * r.referenceMIPS / res.MIPS
}

// Candidates evaluates j on every resource, in list order.
func (r *Run) Candidates(ctx context.Context, j *job.Job, withEnergy bool) ([]Candidate, error) {
	parents, err := r.graph.ParentsOf(ctx, j.ID)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(r.resources))
	for _, res := range r.resources {
		start := res.AvailableTime
		for _, p := range parents {
			ready := p.Finish
			if p.Resource != res.ID {
				ready += r.engine.cfg.Costs.Profile(p.Type).CommAfter
			}
			start = max(start, ready)
		}
		d := r.Duration(j, res)
		c := Candidate{Resource: res, Start: start, Duration: d, Finish: start + d}
		if withEnergy {
			c.Energy, err = r.energy(j, res, d)
			if err != nil {
				return nil, fmt.Errorf("estimating %s on %s: %w", j.ID, res.ID, err)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Run) energy(j *job.Job, res *job.Resource, duration float64) (float64, error) {
	cfg := r.engine.cfg
	profile := cfg.Costs.Profile(j.Type)
	if cfg.Estimator == nil || !profile.HasWorkload() {
		return res.BasePower * duration, nil
	}
	est, err := cfg.Estimator.EstimateEnergy(
		estimator.WorkloadOf(j.Type, profile),
		res,
		estimator.State{CPULoad: res.CPULoad},
		estimator.State{CPULoad: cfg.SourceLoad},
		cfg.Network,
	)
	if err != nil {
		return 0, err
	}
	return est.Joules, nil
}

// Place picks a resource for j with the given selector.
func (r *Run) Place(ctx context.Context, j *job.Job, sel ResourceSelector) (Candidate, error) {
	candidates, err := r.Candidates(ctx, j, sel.NeedsEnergy())
	if err != nil {
		return Candidate{}, err
	}
	return sel.Select(candidates), nil
}

// Assign commits a placement: the job gets the next execution number, the
// resource's timeline advances and the ledger records the assignment.
func (r *Run) Assign(ctx context.Context, j *job.Job, c Candidate) error {
	r.counter++
	if err := r.graph.Assign(ctx, j.ID, r.counter, c.Resource.ID, c.Start, c.Finish); err != nil {
		return err
	}
	if err := c.Resource.Advance(c.Finish); err != nil {
		return err
	}
	return r.ledger.Record(ledger.AssignmentOf(j))
}

// unschedulable builds the error for the given pending jobs.
func unschedulable(pending []*job.Job) error {
	e := &UnschedulableError{}
	for _, j := range pending {
		e.Pending = append(e.Pending, j.ID)
	}
	return e
}
