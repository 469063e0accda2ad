package costs

import (
	"fmt"
	"maps"
	"slices"
)

// Profile is the static cost of one job type.
type Profile struct {
	// ExecTime is the reference execution time in seconds.
	ExecTime float64
	// CommBefore is the inbound communication cost. It weighs the edge into
	// a job when ranks are computed.
	CommBefore float64
	// CommAfter is the outbound communication cost, paid by a child placed
	// on a different resource.
	CommAfter float64

	CPUInstructions float64
	// DataSize is in bytes.
	DataSize float64
}

// HasWorkload reports whether the profile carries the instruction or data
// figures the estimator needs.
func (p Profile) HasWorkload() bool {
	return p.CPUInstructions > 0 || p.DataSize > 0
}

// Table maps job types to cost profiles.
type Table struct {
	profiles map[string]Profile
}

// NewTable creates a table from the given profiles. The map is copied.
func NewTable(profiles map[string]Profile) *Table {
	t := &Table{profiles: make(map[string]Profile, len(profiles))}
	maps.Copy(t.profiles, profiles)
	return t
}

// Set adds or replaces the profile of a job type.
func (t *Table) Set(jobType string, p Profile) error {
	if jobType == "" {
		return fmt.Errorf("job type cannot be empty")
	}
	if p.ExecTime < 0 || p.CommBefore < 0 || p.CommAfter < 0 || p.CPUInstructions < 0 || p.DataSize < 0 {
		return fmt.Errorf("job type '%s': cost values must not be negative", jobType)
	}
	if t.profiles == nil {
		t.profiles = make(map[string]Profile)
	}
	t.profiles[jobType] = p
	return nil
}

// Lookup returns the profile of a job type and whether it was known.
// Unknown types get the zero profile.
func (t *Table) Lookup(jobType string) (Profile, bool) {
	if t == nil {
		return Profile{}, false
	}
	p, ok := t.profiles[jobType]
	return p, ok
}

// Profile is Lookup without the presence flag.
func (t *Table) Profile(jobType string) Profile {
	p, _ := t.Lookup(jobType)
	return p
}

// Types lists the known job types in sorted order.
func (t *Table) Types() []string {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.profiles))
}

// Len returns the number of known job types.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.profiles)
}
