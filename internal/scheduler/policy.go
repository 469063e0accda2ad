package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/wfplan/internal/job"
)

// Policy decides the order in which jobs are planned.
type Policy interface {
	Name() string
	// Schedule assigns every job of the run, or returns an error.
	Schedule(ctx context.Context, r *Run) error
}

// ParsePolicy resolves a policy by name.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "tiered":
		return Tiered{}, nil
	case "heft":
		return HEFT{}, nil
	case "weighted":
		return Weighted{}, nil
	default:
		return nil, fmt.Errorf("unknown scheduling policy %q", name)
	}
}

// Tiered is the preference-gated list scheduler.
type Tiered struct{}

func (Tiered) Name() string { return "tiered" }

func (Tiered) Schedule(ctx context.Context, r *Run) error {
	return listSchedule(ctx, r, true)
}

// HEFT is the list scheduler without preference gating.
type HEFT struct{}

func (HEFT) Name() string { return "heft" }

func (HEFT) Schedule(ctx context.Context, r *Run) error {
	return listSchedule(ctx, r, false)
}

func listSchedule(ctx context.Context, r *Run, gated bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pending := r.Graph().Pending(ctx)
		if len(pending) == 0 {
			return nil
		}
		ready, err := r.Graph().Ready(ctx)
		if err != nil {
			return err
		}
		if gated {
			ready = gate(ready)
		}

		next := highestRank(ready)
		if next == nil {
			return unschedulable(pending)
		}

		sel := r.DefaultSelector()
		if gated {
			sel = r.SelectorFor(next.Preference)
		}
		c, err := r.Place(ctx, next, sel)
		if err != nil {
			return err
		}
		if err := r.Assign(ctx, next, c); err != nil {
			return err
		}
	}
}

// gate keeps the ready jobs of the highest preference class present.
// Order is preserved.
func gate(ready []*job.Job) []*job.Job {
	if len(ready) == 0 {
		return nil
	}
	top := ready[0].Preference
	for _, j := range ready[1:] {
		if j.Preference.Outranks(top) {
			top = j.Preference
		}
	}
	eligible := make([]*job.Job, 0, len(ready))
	for _, j := range ready {
		if j.Preference == top {
			eligible = append(eligible, j)
		}
	}
	return eligible
}

// highestRank returns the first job with the maximum rank, or nil.
func highestRank(jobs []*job.Job) *job.Job {
	var best *job.Job
	for _, j := range jobs {
		if best == nil || j.Rank > best.Rank {
			best = j
		}
	}
	return best
}
