package jobid

import (
	"fmt"
	"regexp"
	"strings"
)

// Separator joins the workflow identifier and the job name.
const Separator = ":"

var segmentRegex = regexp.MustCompile(`^[A-Za-z0-9_.@+-]+$`)

// ID identifies a job in the combined graph.
type ID struct {
	Workflow string
	Name     string
}

// New builds an ID, validating both segments.
func New(workflow, name string) (ID, error) {
	if err := validateSegment("workflow", workflow); err != nil {
		return ID{}, err
	}
	if err := validateSegment("job name", name); err != nil {
		return ID{}, err
	}
	return ID{Workflow: workflow, Name: name}, nil
}

// MustNew is like New but panics on an invalid segment. Intended for tests
// and static fixtures.
func MustNew(workflow, name string) ID {
	id, err := New(workflow, name)
	if err != nil {
		panic(err)
	}
	return id
}

// Parse reads an identifier in `workflow:name` form.
func Parse(raw string) (ID, error) {
	if raw == "" {
		return ID{}, fmt.Errorf("identifier cannot be empty")
	}
	workflow, name, ok := strings.Cut(raw, Separator)
	if !ok {
		return ID{}, fmt.Errorf("identifier %q is missing the %q separator", raw, Separator)
	}
	return New(workflow, name)
}

// String renders the canonical `workflow:name` form.
func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	return id.Workflow + Separator + id.Name
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id.Workflow == "" && id.Name == ""
}

func validateSegment(what, s string) error {
	if s == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if strings.Contains(s, Separator) {
		return fmt.Errorf("invalid %s %q: must not contain %q", what, s, Separator)
	}
	if !segmentRegex.MatchString(s) {
		return fmt.Errorf("invalid %s format: %q", what, s)
	}
	return nil
}
