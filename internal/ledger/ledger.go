package ledger

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/jobid"
	"github.com/specialistvlad/wfplan/internal/topologystore"
)

// ErrSealed is returned when recording into a sealed ledger.
var ErrSealed = errors.New("ledger is sealed")

// Assignment is one scheduled job.
type Assignment struct {
	ExecutionNumber int
	JobID           jobid.ID
	JobName         string
	JobType         string
	WorkflowID      string
	WorkflowPath    string
	Preference      job.Preference
	Resource        string
	Start           float64
	Finish          float64
	Rank            float64
}

// Duration is the planned run time.
func (a Assignment) Duration() float64 { return a.Finish - a.Start }

// AssignmentOf captures the scheduling state of an assigned job.
func AssignmentOf(j *job.Job) Assignment {
	return Assignment{
		ExecutionNumber: j.ExecutionNumber,
		JobID:           j.ID,
		JobName:         j.Name,
		JobType:         j.Type,
		WorkflowID:      j.WorkflowID,
		WorkflowPath:    j.WorkflowPath,
		Preference:      j.Preference,
		Resource:        j.Resource,
		Start:           j.Start,
		Finish:          j.Finish,
		Rank:            j.Rank,
	}
}

// Ledger accumulates assignments for one run.
type Ledger struct {
	mu           sync.Mutex
	runID        string
	workflows    []topologystore.Workflow
	dependencies int
	byExec       map[int]Assignment
	sorted       []Assignment
	dirty        bool
	sealed       bool
}

// New creates an empty ledger for a run over the given workflows and
// dependency edge count. Each ledger gets a fresh run ID.
func New(workflows []topologystore.Workflow, dependencies int) *Ledger {
	return &Ledger{
		runID:        uuid.NewString(),
		workflows:    slices.Clone(workflows),
		dependencies: dependencies,
		byExec:       make(map[int]Assignment),
	}
}

// RunID identifies the run this ledger belongs to.
func (l *Ledger) RunID() string { return l.runID }

// Record adds an assignment. Execution numbers must be positive and unique.
func (l *Ledger) Record(a Assignment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sealed {
		return ErrSealed
	}
	if a.ExecutionNumber <= 0 {
		return fmt.Errorf("invalid execution number %d for %s", a.ExecutionNumber, a.JobID)
	}
	if prev, exists := l.byExec[a.ExecutionNumber]; exists {
		return fmt.Errorf("execution number %d already recorded for %s", a.ExecutionNumber, prev.JobID)
	}
	l.byExec[a.ExecutionNumber] = a
	l.dirty = true
	return nil
}

// Seal makes the ledger read-only.
func (l *Ledger) Seal() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sealed = true
}

// Sealed reports whether Seal was called.
func (l *Ledger) Sealed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sealed
}

// Assignments returns the assignments ordered by execution number.
func (l *Ledger) Assignments() []Assignment {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dirty || l.sorted == nil {
		l.sorted = make([]Assignment, 0, len(l.byExec))
		for _, a := range l.byExec {
			l.sorted = append(l.sorted, a)
		}
		slices.SortFunc(l.sorted, func(a, b Assignment) int {
			return a.ExecutionNumber - b.ExecutionNumber
		})
		l.dirty = false
	}
	return slices.Clone(l.sorted)
}

// Makespan is the latest finish time over all assignments.
func (l *Ledger) Makespan() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var makespan float64
	for _, a := range l.byExec {
		makespan = max(makespan, a.Finish)
	}
	return makespan
}

// JobCount is the number of recorded assignments.
func (l *Ledger) JobCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byExec)
}

// DependencyCount is the number of dependency edges in the planned graph.
func (l *Ledger) DependencyCount() int { return l.dependencies }

// Workflows lists the workflow sources in the order they were processed.
func (l *Ledger) Workflows() []topologystore.Workflow {
	return slices.Clone(l.workflows)
}

// TotalEnergy sums duration times base power over all assignments.
// Assignments to resources missing from the list contribute nothing.
func (l *Ledger) TotalEnergy(resources []*job.Resource) float64 {
	power := make(map[string]float64, len(resources))
	for _, r := range resources {
		power[r.ID] = r.BasePower
	}

	var total float64
	for _, a := range l.Assignments() {
		total += a.Duration() * power[a.Resource]
	}
	return total
}
