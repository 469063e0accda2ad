package ledger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/wfplan/internal/costs"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/jobid"
)

// tolerance absorbs floating point noise in time comparisons.
const tolerance = 1e-9

// Graph is the view of the planned graph Validate checks against.
type Graph interface {
	Jobs(ctx context.Context) []*job.Job
	ParentsOf(ctx context.Context, id jobid.ID) ([]*job.Job, error)
}

// Validate checks that the ledger is a consistent schedule of g:
//   - execution numbers are exactly 1..N and every job of g is present
//   - each job starts no earlier than each parent's finish, plus the parent's
//     outbound communication cost when they run on different resources
//   - intervals on the same resource do not overlap
//
// All violations are reported together.
func (l *Ledger) Validate(ctx context.Context, g Graph, table *costs.Table) error {
	assignments := l.Assignments()
	var errs []error

	byJob := make(map[jobid.ID]Assignment, len(assignments))
	for i, a := range assignments {
		if a.ExecutionNumber != i+1 {
			errs = append(errs, fmt.Errorf("execution numbers are not a permutation: expected %d, found %d", i+1, a.ExecutionNumber))
			break
		}
	}
	for _, a := range assignments {
		if _, dup := byJob[a.JobID]; dup {
			errs = append(errs, fmt.Errorf("job %s assigned twice", a.JobID))
		}
		byJob[a.JobID] = a
	}

	jobs := g.Jobs(ctx)
	if len(jobs) != len(assignments) {
		errs = append(errs, fmt.Errorf("graph has %d jobs but %d were assigned", len(jobs), len(assignments)))
	}

	for _, j := range jobs {
		a, ok := byJob[j.ID]
		if !ok {
			errs = append(errs, fmt.Errorf("job %s was not assigned", j.ID))
			continue
		}
		parents, err := g.ParentsOf(ctx, j.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, p := range parents {
			pa, ok := byJob[p.ID]
			if !ok {
				continue
			}
			ready := pa.Finish
			if pa.Resource != a.Resource {
				ready += table.Profile(p.Type).CommAfter
			}
			if a.Start+tolerance < ready {
				errs = append(errs, fmt.Errorf("job %s starts at %.2f before parent %s is available at %.2f", j.ID, a.Start, p.ID, ready))
			}
		}
	}

	lastOn := make(map[string]Assignment)
	for _, a := range assignmentsByStart(assignments) {
		if prev, ok := lastOn[a.Resource]; ok && a.Start+tolerance < prev.Finish {
			errs = append(errs, fmt.Errorf("jobs %s and %s overlap on %s", prev.JobID, a.JobID, a.Resource))
		}
		if prev, ok := lastOn[a.Resource]; !ok || a.Finish > prev.Finish {
			lastOn[a.Resource] = a
		}
	}

	return errors.Join(errs...)
}

func assignmentsByStart(in []Assignment) []Assignment {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b Assignment) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.ExecutionNumber, b.ExecutionNumber))
	})
	return out
}
