package job

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/wfplan/internal/jobid"
)

// ErrAlreadyScheduled is returned when a job that already carries an
// assignment is assigned again.
var ErrAlreadyScheduled = errors.New("job already scheduled")

// Job is a single task of a workflow together with its scheduling state.
type Job struct {
	ID           jobid.ID
	Name         string
	Type         string
	WorkflowID   string
	WorkflowPath string
	Preference   Preference
	// Weight is the workflow-level dial (0-10) used by the weighted policy.
	Weight float64
	// Priority is the static PRIORITY value from the graph file. It is kept
	// for reporting only.
	Priority int

	// Rank is the upward rank, written once by the rank calculator.
	Rank float64

	// Scheduling state. Zero until Assign is called.
	ExecutionNumber int
	Start           float64
	Finish          float64
	Resource        string
}

// New creates an unscheduled job. The type is derived from the name's
// prefix up to the first underscore.
func New(workflowID, workflowPath, name string, pref Preference) (*Job, error) {
	id, err := jobid.New(workflowID, name)
	if err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	return &Job{
		ID:           id,
		Name:         name,
		Type:         TypeOf(name),
		WorkflowID:   workflowID,
		WorkflowPath: workflowPath,
		Preference:   pref,
	}, nil
}

// TypeOf derives a job type from its name, e.g. "mProject_ID0000012" has
// type "mProject". A name without an underscore is its own type.
func TypeOf(name string) string {
	if before, _, ok := strings.Cut(name, "_"); ok {
		return before
	}
	return name
}

// Scheduled reports whether the job has been assigned.
func (j *Job) Scheduled() bool {
	return j.ExecutionNumber != 0
}

// Duration is the planned run time of the job.
func (j *Job) Duration() float64 {
	return j.Finish - j.Start
}

// Assign sets the scheduling state. It may only be called once per job.
func (j *Job) Assign(executionNumber int, resource string, start, finish float64) error {
	if j.Scheduled() {
		return fmt.Errorf("%w: %s has execution number %d", ErrAlreadyScheduled, j.ID, j.ExecutionNumber)
	}
	if executionNumber <= 0 {
		return fmt.Errorf("invalid execution number %d for %s", executionNumber, j.ID)
	}
	if finish < start {
		return fmt.Errorf("finish %.2f before start %.2f for %s", finish, start, j.ID)
	}
	j.ExecutionNumber = executionNumber
	j.Resource = resource
	j.Start = start
	j.Finish = finish
	return nil
}
