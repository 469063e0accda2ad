package scheduler

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/wfplan/internal/job"
)

// Candidate is the outcome of placing a job on one resource.
type Candidate struct {
	Resource *job.Resource
	Start    float64
	Duration float64
	Finish   float64
	// Energy is only filled in when the selector asks for it.
	Energy float64
}

// ResourceSelector picks one candidate for a job. Candidates arrive in
// resource list order and are never empty.
type ResourceSelector interface {
	Name() string
	// NeedsEnergy reports whether candidates must carry an energy estimate.
	NeedsEnergy() bool
	Select(candidates []Candidate) Candidate
}

// EarliestStart picks the resource where the job can start first.
type EarliestStart struct{}

func (EarliestStart) Name() string      { return "earliest_start" }
func (EarliestStart) NeedsEnergy() bool { return false }

func (EarliestStart) Select(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Start < best.Start {
			best = c
		}
	}
	return best
}

// EarliestFinish picks the resource where the job finishes first.
type EarliestFinish struct{}

func (EarliestFinish) Name() string      { return "earliest_finish" }
func (EarliestFinish) NeedsEnergy() bool { return false }

func (EarliestFinish) Select(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Finish < best.Finish {
			best = c
		}
	}
	return best
}

// MinimumEnergy picks the resource with the lowest estimated energy, using
// the start time as a tie-break.
type MinimumEnergy struct{}

func (MinimumEnergy) Name() string      { return "minimum_energy" }
func (MinimumEnergy) NeedsEnergy() bool { return true }

func (MinimumEnergy) Select(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Energy < best.Energy || (c.Energy == best.Energy && c.Start < best.Start) {
			best = c
		}
	}
	return best
}

// MinimumPowerTime picks the resource with the lowest base power times
// duration, using the start time as a tie-break. It never consults the
// estimator.
type MinimumPowerTime struct{}

func (MinimumPowerTime) Name() string      { return "minimum_power_time" }
func (MinimumPowerTime) NeedsEnergy() bool { return false }

func (MinimumPowerTime) Select(candidates []Candidate) Candidate {
	best := candidates[0]
	bestCost := best.Resource.BasePower * best.Duration
	for _, c := range candidates[1:] {
		cost := c.Resource.BasePower * c.Duration
		if cost < bestCost || (cost == bestCost && c.Start < best.Start) {
			best, bestCost = c, cost
		}
	}
	return best
}

// ParseSelector resolves a selector by name.
func ParseSelector(name string) (ResourceSelector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "earliest_start":
		return EarliestStart{}, nil
	case "earliest_finish":
		return EarliestFinish{}, nil
	case "minimum_energy":
		return MinimumEnergy{}, nil
	default:
		return nil, fmt.Errorf("unknown resource selector %q", name)
	}
}
