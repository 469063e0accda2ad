package rank

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/wfplan/internal/costs"
	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/jobid"
)

// Graph is the view of the job graph the calculator needs.
type Graph interface {
	Jobs(ctx context.Context) []*job.Job
	ChildrenOf(ctx context.Context, id jobid.ID) ([]*job.Job, error)
}

// Table maps job IDs to their upward rank.
type Table map[jobid.ID]float64

// Calculator computes upward ranks from a cost table.
type Calculator struct {
	costs *costs.Table
}

// NewCalculator creates a calculator. A nil table ranks every job as zero.
func NewCalculator(c *costs.Table) *Calculator {
	return &Calculator{costs: c}
}

// run is the state of one Compute call.
type run struct {
	ctx        context.Context
	graph      Graph
	costs      *costs.Table
	memo       Table
	inProgress map[jobid.ID]bool
	stack      []jobid.ID
}

// Compute ranks every job in g. It does not modify the jobs.
func (c *Calculator) Compute(ctx context.Context, g Graph) (Table, error) {
	r := &run{
		ctx:        ctx,
		graph:      g,
		costs:      c.costs,
		memo:       make(Table),
		inProgress: make(map[jobid.ID]bool),
	}

	for _, j := range g.Jobs(ctx) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := r.rank(j); err != nil {
			return nil, err
		}
	}

	ctxlog.FromContext(ctx).Debug("Ranks computed.", "jobs", len(r.memo))
	return r.memo, nil
}

// Annotate computes ranks and writes them to the jobs. Nothing is written
// when the graph is cyclic.
func (c *Calculator) Annotate(ctx context.Context, g Graph) (Table, error) {
	table, err := c.Compute(ctx, g)
	if err != nil {
		return nil, err
	}
	for _, j := range g.Jobs(ctx) {
		j.Rank = table[j.ID]
	}
	return table, nil
}

func (r *run) rank(j *job.Job) (float64, error) {
	if v, ok := r.memo[j.ID]; ok {
		return v, nil
	}
	if r.inProgress[j.ID] {
		start := slices.Index(r.stack, j.ID)
		path := append(slices.Clone(r.stack[start:]), j.ID)
		return 0, &CyclicDependencyError{Path: path}
	}

	r.inProgress[j.ID] = true
	r.stack = append(r.stack, j.ID)

	children, err := r.graph.ChildrenOf(r.ctx, j.ID)
	if err != nil {
		return 0, fmt.Errorf("ranking %s: %w", j.ID, err)
	}

	var longest float64
	for _, child := range children {
		childRank, err := r.rank(child)
		if err != nil {
			return 0, err
		}
		longest = max(longest, childRank+r.costs.Profile(child.Type).CommBefore)
	}

	value := r.costs.Profile(j.Type).ExecTime + longest

	r.stack = r.stack[:len(r.stack)-1]
	delete(r.inProgress, j.ID)
	r.memo[j.ID] = value
	return value, nil
}
