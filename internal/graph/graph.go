package graph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/jobid"
	"github.com/specialistvlad/wfplan/internal/topologystore"
)

// Manager implements Graph on top of a topology store.
type Manager struct {
	topology topologystore.Store
}

// New creates a graph manager over the given store.
func New(ts topologystore.Store) *Manager {
	return &Manager{topology: ts}
}

var _ Graph = (*Manager)(nil)

// AddWorkflow registers a workflow source.
func (m *Manager) AddWorkflow(ctx context.Context, wf topologystore.Workflow) error {
	return m.topology.AddWorkflow(ctx, wf)
}

// AddJob registers a job. Jobs keep the preference and weight of their workflow.
func (m *Manager) AddJob(ctx context.Context, j *job.Job) error {
	return m.topology.AddJob(ctx, j)
}

// AddDependency records that child depends on parent.
func (m *Manager) AddDependency(ctx context.Context, parent, child jobid.ID) error {
	return m.topology.AddDependency(ctx, parent, child)
}

func (m *Manager) Job(ctx context.Context, id jobid.ID) (*job.Job, bool) {
	return m.topology.Job(ctx, id)
}

func (m *Manager) Jobs(ctx context.Context) []*job.Job {
	return m.topology.Jobs(ctx)
}

func (m *Manager) ParentsOf(ctx context.Context, id jobid.ID) ([]*job.Job, error) {
	ids, err := m.topology.Parents(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.resolve(ctx, ids)
}

func (m *Manager) ChildrenOf(ctx context.Context, id jobid.ID) ([]*job.Job, error) {
	ids, err := m.topology.Children(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.resolve(ctx, ids)
}

func (m *Manager) resolve(ctx context.Context, ids []jobid.ID) ([]*job.Job, error) {
	out := make([]*job.Job, 0, len(ids))
	for _, id := range ids {
		j, ok := m.topology.Job(ctx, id)
		if !ok {
			return nil, fmt.Errorf("inconsistent topology: job '%s' not found", id)
		}
		out = append(out, j)
	}
	return out, nil
}

func (m *Manager) Ready(ctx context.Context) ([]*job.Job, error) {
	var ready []*job.Job
	for _, j := range m.topology.Jobs(ctx) {
		if j.Scheduled() {
			continue
		}
		parents, err := m.ParentsOf(ctx, j.ID)
		if err != nil {
			return nil, err
		}
		if allScheduled(parents) {
			ready = append(ready, j)
		}
	}
	return ready, nil
}

func allScheduled(jobs []*job.Job) bool {
	for _, j := range jobs {
		if !j.Scheduled() {
			return false
		}
	}
	return true
}

func (m *Manager) Pending(ctx context.Context) []*job.Job {
	var pending []*job.Job
	for _, j := range m.topology.Jobs(ctx) {
		if !j.Scheduled() {
			pending = append(pending, j)
		}
	}
	return pending
}

func (m *Manager) EdgeCount(ctx context.Context) int {
	return m.topology.EdgeCount(ctx)
}

func (m *Manager) Workflows(ctx context.Context) []topologystore.Workflow {
	return m.topology.Workflows(ctx)
}

func (m *Manager) Assign(ctx context.Context, id jobid.ID, executionNumber int, resource string, start, finish float64) error {
	j, ok := m.topology.Job(ctx, id)
	if !ok {
		return fmt.Errorf("cannot assign unknown job '%s'", id)
	}
	if err := j.Assign(executionNumber, resource, start, finish); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Job assigned.",
		"job", id.String(),
		"execution_number", executionNumber,
		"resource", resource,
		"start", start,
		"finish", finish,
	)
	return nil
}
