package inmemorytopology

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/jobid"
	"github.com/specialistvlad/wfplan/internal/topologystore"
)

// edgeList is an insertion-ordered set of job IDs.
type edgeList struct {
	order []jobid.ID
	set   map[jobid.ID]struct{}
}

func (e *edgeList) add(id jobid.ID) bool {
	if e.set == nil {
		e.set = make(map[jobid.ID]struct{})
	}
	if _, ok := e.set[id]; ok {
		return false
	}
	e.set[id] = struct{}{}
	e.order = append(e.order, id)
	return true
}

func (e *edgeList) list() []jobid.ID {
	if e == nil {
		return []jobid.ID{}
	}
	out := make([]jobid.ID, len(e.order))
	copy(out, e.order)
	return out
}

// Store is a thread-safe, in-memory topologystore.Store.
type Store struct {
	mu        sync.RWMutex
	workflows []topologystore.Workflow
	wfIndex   map[string]int
	jobs      map[jobid.ID]*job.Job
	order     []jobid.ID
	parents   map[jobid.ID]*edgeList
	children  map[jobid.ID]*edgeList
	edges     int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		wfIndex:  make(map[string]int),
		jobs:     make(map[jobid.ID]*job.Job),
		parents:  make(map[jobid.ID]*edgeList),
		children: make(map[jobid.ID]*edgeList),
	}
}

var _ topologystore.Store = (*Store)(nil)

func (s *Store) AddWorkflow(ctx context.Context, wf topologystore.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wf.ID == "" {
		return fmt.Errorf("workflow id cannot be empty")
	}
	if _, exists := s.wfIndex[wf.ID]; exists {
		return fmt.Errorf("workflow '%s' already registered", wf.ID)
	}
	s.wfIndex[wf.ID] = len(s.workflows)
	s.workflows = append(s.workflows, wf)
	return nil
}

func (s *Store) AddJob(ctx context.Context, j *job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wfIndex[j.WorkflowID]; !ok {
		return fmt.Errorf("job '%s' references unknown workflow '%s'", j.ID, j.WorkflowID)
	}
	if _, exists := s.jobs[j.ID]; exists {
		return fmt.Errorf("job '%s' already exists in topology", j.ID)
	}
	s.jobs[j.ID] = j
	s.order = append(s.order, j.ID)
	return nil
}

func (s *Store) AddDependency(ctx context.Context, parent, child jobid.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[parent]; !exists {
		return fmt.Errorf("dependency source job '%s' not found in topology", parent)
	}
	if _, exists := s.jobs[child]; !exists {
		return fmt.Errorf("dependency target job '%s' not found in topology", child)
	}

	if s.children[parent] == nil {
		s.children[parent] = &edgeList{}
	}
	if s.parents[child] == nil {
		s.parents[child] = &edgeList{}
	}
	if s.children[parent].add(child) {
		s.parents[child].add(parent)
		s.edges++
	}
	return nil
}

func (s *Store) Job(ctx context.Context, id jobid.ID) (*job.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	return j, ok
}

func (s *Store) Jobs(ctx context.Context) []*job.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*job.Job, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.jobs[id])
	}
	return out
}

func (s *Store) Parents(ctx context.Context, id jobid.ID) ([]jobid.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.jobs[id]; !exists {
		return nil, fmt.Errorf("job '%s' not found in topology", id)
	}
	return s.parents[id].list(), nil
}

func (s *Store) Children(ctx context.Context, id jobid.ID) ([]jobid.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.jobs[id]; !exists {
		return nil, fmt.Errorf("job '%s' not found in topology", id)
	}
	return s.children[id].list(), nil
}

func (s *Store) EdgeCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edges
}

func (s *Store) Workflows(ctx context.Context) []topologystore.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]topologystore.Workflow, len(s.workflows))
	copy(out, s.workflows)
	return out
}
