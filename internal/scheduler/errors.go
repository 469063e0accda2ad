package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/wfplan/internal/jobid"
	"github.com/specialistvlad/wfplan/internal/resources"
)

var (
	// ErrResourceListEmpty is returned before any work when there is nothing
	// to schedule onto.
	ErrResourceListEmpty = resources.ErrResourceListEmpty
	// ErrUnschedulableGraph matches every *UnschedulableError.
	ErrUnschedulableGraph = errors.New("unschedulable graph")
)

// maxListedJobs caps how many pending jobs an UnschedulableError names.
const maxListedJobs = 10

// UnschedulableError reports that jobs remain pending but none can be
// scheduled.
type UnschedulableError struct {
	Pending []jobid.ID
}

func (e *UnschedulableError) Error() string {
	names := make([]string, 0, min(len(e.Pending), maxListedJobs))
	for i, id := range e.Pending {
		if i == maxListedJobs {
			names = append(names, "...")
			break
		}
		names = append(names, id.String())
	}
	return fmt.Sprintf("%s: %d job(s) pending but none ready (%s)",
		ErrUnschedulableGraph, len(e.Pending), strings.Join(names, ", "))
}

func (e *UnschedulableError) Unwrap() error {
	return ErrUnschedulableGraph
}
