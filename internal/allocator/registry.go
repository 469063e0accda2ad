package allocator

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/wfplan/internal/resources"
)

// ErrStaleAllocations is returned when a resource list or persisted state
// still records holder jobs from an earlier run.
var ErrStaleAllocations = errors.New("resources are already allocated")

// Status summarises the registry.
type Status struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Available int `json:"available"`
}

// Snapshot is a copy of the registry state at one generation.
type Snapshot struct {
	Generation uint64            `json:"generation"`
	Entries    []resources.Entry `json:"entries"`
}

// Registry tracks which job holds which resource. The zero value is not
// usable; create one with NewRegistry.
type Registry struct {
	mu            sync.Mutex
	entries       []resources.Entry
	generation    uint64
	lastPersisted uint64
}

// NewRegistry creates a registry over the given resources, in list order.
// Entries that already name a holder job are rejected.
func NewRegistry(entries []resources.Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, resources.ErrResourceListEmpty
	}
	if err := checkStale(entries); err != nil {
		return nil, err
	}
	return &Registry{entries: slices.Clone(entries)}, nil
}

func checkStale(entries []resources.Entry) error {
	var held []string
	for _, e := range entries {
		if e.Job != "" {
			held = append(held, e.ID+"="+e.Job)
		}
	}
	if len(held) > 0 {
		return fmt.Errorf("%w: %v", ErrStaleAllocations, held)
	}
	return nil
}

// Allocate gives the first free resource to job. An empty job name gets
// nothing.
func (r *Registry) Allocate(job string) (string, bool) {
	if job == "" {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].Job == "" {
			r.entries[i].Job = job
			r.generation++
			return r.entries[i].ID, true
		}
	}
	return "", false
}

// Release frees the resource held by job.
func (r *Registry) Release(job string) (string, bool) {
	if job == "" {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].Job == job {
			r.entries[i].Job = ""
			r.generation++
			return r.entries[i].ID, true
		}
	}
	return "", false
}

// Status counts used and free resources.
func (r *Registry) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked()
}

func (r *Registry) statusLocked() Status {
	return countEntries(r.entries)
}

// Generation increases with every successful mutation.
func (r *Registry) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Snapshot copies the current state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{Generation: r.generation, Entries: slices.Clone(r.entries)}
}

// MarkPersisted records that the state at gen has been stored.
func (r *Registry) MarkPersisted(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen > r.lastPersisted {
		r.lastPersisted = gen
	}
}

// LastPersisted returns the newest generation known to be stored.
func (r *Registry) LastPersisted() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPersisted
}
