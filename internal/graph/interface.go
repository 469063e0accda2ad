package graph

import (
	"context"

	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/jobid"
	"github.com/specialistvlad/wfplan/internal/topologystore"
)

// Graph is the read side of the combined job graph plus the single mutation
// the scheduling engine performs on it.
type Graph interface {
	// Job looks a job up by ID.
	Job(ctx context.Context, id jobid.ID) (*job.Job, bool)

	// Jobs returns every job in insertion order.
	Jobs(ctx context.Context) []*job.Job

	// ParentsOf returns the full jobs the given job depends on.
	ParentsOf(ctx context.Context, id jobid.ID) ([]*job.Job, error)

	// ChildrenOf returns the full jobs depending on the given job.
	ChildrenOf(ctx context.Context, id jobid.ID) ([]*job.Job, error)

	// Ready returns the unscheduled jobs whose parents are all scheduled,
	// in insertion order.
	Ready(ctx context.Context) ([]*job.Job, error)

	// Pending returns the unscheduled jobs in insertion order.
	Pending(ctx context.Context) []*job.Job

	// EdgeCount returns the number of distinct dependency edges.
	EdgeCount(ctx context.Context) int

	// Workflows returns the workflow sources in the order they were added.
	Workflows(ctx context.Context) []topologystore.Workflow

	// Assign records the scheduling decision for a job.
	Assign(ctx context.Context, id jobid.ID, executionNumber int, resource string, start, finish float64) error
}
