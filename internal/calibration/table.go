package calibration

import "fmt"

// Factors are the time and energy corrections for one (job type, resource) pair.
type Factors struct {
	TimeFactor   float64 `json:"time_factor"`
	EnergyFactor float64 `json:"energy_factor"`
}

// Neutral is the correction used when no history exists.
var Neutral = Factors{TimeFactor: 1, EnergyFactor: 1}

type key struct {
	jobType  string
	resource string
}

// Table maps (job type, resource) pairs to correction factors.
type Table struct {
	entries map[key]Factors
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[key]Factors)}
}

// Set stores the factors for a pair. Factors must be positive.
func (t *Table) Set(jobType, resourceID string, f Factors) error {
	if jobType == "" || resourceID == "" {
		return fmt.Errorf("calibration entry needs both a job type and a resource id")
	}
	if f.TimeFactor <= 0 || f.EnergyFactor <= 0 {
		return fmt.Errorf("calibration %s/%s: factors must be positive, got time=%v energy=%v",
			jobType, resourceID, f.TimeFactor, f.EnergyFactor)
	}
	t.entries[key{jobType, resourceID}] = f
	return nil
}

// Lookup returns the factors for a pair, or Neutral when there are none.
// A nil table behaves as an empty one.
func (t *Table) Lookup(jobType, resourceID string) Factors {
	if t == nil {
		return Neutral
	}
	if f, ok := t.entries[key{jobType, resourceID}]; ok {
		return f
	}
	return Neutral
}

// Len returns the number of stored pairs.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
