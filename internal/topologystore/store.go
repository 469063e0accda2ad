// Package topologystore defines the interface for the static structure of the
// combined multi-workflow graph: which jobs exist and how they depend on each
// other.
//
// The topology is written once while the workflow files are loaded and read
// many times during ranking and scheduling. Implementations must preserve
// insertion order, because the scheduling engine breaks ties by the order in
// which jobs were declared.
package topologystore

import (
	"context"

	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/jobid"
)

// Workflow describes one loaded workflow source.
type Workflow struct {
	ID         string
	Path       string
	Preference job.Preference
	Weight     float64
}

// Store holds jobs and their dependency edges.
type Store interface {
	// AddWorkflow registers a workflow source. Adding the same ID twice is an error.
	AddWorkflow(ctx context.Context, wf Workflow) error

	// AddJob registers a job. Its workflow must already be registered.
	AddJob(ctx context.Context, j *job.Job) error

	// AddDependency records that child depends on parent. Both jobs must
	// exist. Repeated edges are collapsed.
	AddDependency(ctx context.Context, parent, child jobid.ID) error

	// Job looks a job up by ID.
	Job(ctx context.Context, id jobid.ID) (*job.Job, bool)

	// Jobs returns every job in insertion order.
	Jobs(ctx context.Context) []*job.Job

	// Parents returns the IDs the given job depends on, in edge insertion order.
	Parents(ctx context.Context, id jobid.ID) ([]jobid.ID, error)

	// Children returns the IDs depending on the given job, in edge insertion order.
	Children(ctx context.Context, id jobid.ID) ([]jobid.ID, error)

	// EdgeCount returns the number of distinct dependency edges.
	EdgeCount(ctx context.Context) int

	// Workflows returns the registered workflows in insertion order.
	Workflows(ctx context.Context) []Workflow
}
