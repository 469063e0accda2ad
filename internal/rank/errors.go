package rank

import (
	"errors"
	"strings"

	"github.com/specialistvlad/wfplan/internal/jobid"
)

// ErrCyclicDependency matches every *CyclicDependencyError.
var ErrCyclicDependency = errors.New("cyclic dependency")

// CyclicDependencyError reports a cycle found while ranking. Path starts and
// ends with the same job.
type CyclicDependencyError struct {
	Path []jobid.ID
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = id.String()
	}
	return "cyclic dependency detected: " + strings.Join(parts, " -> ")
}

func (e *CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}
