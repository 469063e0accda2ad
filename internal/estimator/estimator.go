package estimator

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/wfplan/internal/calibration"
	"github.com/specialistvlad/wfplan/internal/costs"
	"github.com/specialistvlad/wfplan/internal/job"
)

var (
	// ErrInvalidResource is returned when a job with instructions is
	// estimated on a resource without a positive MIPS rating.
	ErrInvalidResource = errors.New("resource has no usable mips rating")
	// ErrNoBandwidth is returned when data must move but the effective
	// bandwidth is not positive.
	ErrNoBandwidth = errors.New("no effective network bandwidth")
)

// Calibration supplies historical correction factors.
type Calibration interface {
	Lookup(jobType, resourceID string) calibration.Factors
}

// Workload is the part of a job the cost model looks at.
type Workload struct {
	JobType         string
	CPUInstructions float64
	DataSize        float64
}

// WorkloadOf builds a workload from a job type and its cost profile.
func WorkloadOf(jobType string, p costs.Profile) Workload {
	return Workload{JobType: jobType, CPUInstructions: p.CPUInstructions, DataSize: p.DataSize}
}

// State is the load of a host, as a CPU utilisation percentage.
type State struct {
	CPULoad float64
}

// Network describes the link data travels over.
type Network struct {
	// Bandwidth in bytes per second.
	Bandwidth float64
	// Load is the link utilisation percentage.
	Load float64
	// Power drawn by the network path while transferring, in watts.
	Power float64
}

// Timing is the breakdown of an ECT.
type Timing struct {
	Transfer float64
	Compute  float64
}

// Total is the completion time.
func (t Timing) Total() float64 { return t.Transfer + t.Compute }

// Estimate is the breakdown of an EEC.
type Estimate struct {
	Joules         float64
	Watts          float64
	TransferEnergy float64
	ComputeEnergy  float64
	Duration       float64
}

// Estimator evaluates the cost model with a calibration source.
type Estimator struct {
	cal Calibration
}

// New creates an estimator. A nil calibration applies neutral factors.
func New(cal Calibration) *Estimator {
	return &Estimator{cal: cal}
}

func (e *Estimator) factors(jobType, resourceID string) calibration.Factors {
	if e.cal == nil {
		return calibration.Neutral
	}
	return e.cal.Lookup(jobType, resourceID)
}

// Timing computes the ECT breakdown of w on r. state is the load on r;
// source is the load on the host the data comes from.
func (e *Estimator) Timing(w Workload, r *job.Resource, state, source State, net Network) (Timing, error) {
	var t Timing

	if w.CPUInstructions > 0 {
		if r.MIPS <= 0 {
			return Timing{}, fmt.Errorf("%w: %s", ErrInvalidResource, r.ID)
		}
		base := w.CPUInstructions / (r.MIPS * 1e6)
		t.Compute = base * loadFactor(state) * e.factors(w.JobType, r.ID).TimeFactor
	}

	if w.DataSize > 0 {
		effective := net.Bandwidth * (1 - net.Load/100)
		if effective <= 0 {
			return Timing{}, fmt.Errorf("%w: bandwidth %v at %v%% load", ErrNoBandwidth, net.Bandwidth, net.Load)
		}
		cpuFactor := 1 + source.CPULoad/200 + state.CPULoad/200
		t.Transfer = w.DataSize / effective * cpuFactor
	}

	return t, nil
}

// EstimateCompletion returns the ECT of w on r in seconds.
func (e *Estimator) EstimateCompletion(w Workload, r *job.Resource, state, source State, net Network) (float64, error) {
	t, err := e.Timing(w, r, state, source, net)
	if err != nil {
		return 0, err
	}
	return t.Total(), nil
}

// EstimateEnergy returns the EEC of w on r.
func (e *Estimator) EstimateEnergy(w Workload, r *job.Resource, state, source State, net Network) (Estimate, error) {
	total, err := e.EstimateCompletion(w, r, state, source, net)
	if err != nil {
		return Estimate{}, err
	}

	ratio := dataRatio(w)
	transferTime := total * ratio
	computeTime := total * (1 - ratio)

	transferEnergy := net.Power * transferTime
	computeEnergy := r.BasePower * computeTime *
		e.factors(w.JobType, r.ID).EnergyFactor *
		energyLoadFactor(state)

	joules := transferEnergy + computeEnergy
	var watts float64
	if total > 0 {
		watts = joules / total
	}

	return Estimate{
		Joules:         joules,
		Watts:          watts,
		TransferEnergy: transferEnergy,
		ComputeEnergy:  computeEnergy,
		Duration:       total,
	}, nil
}

func loadFactor(s State) float64 { return 1 + s.CPULoad/100 }

func energyLoadFactor(s State) float64 { return 1 + s.CPULoad/50 }

func dataRatio(w Workload) float64 {
	sum := w.DataSize + w.CPUInstructions
	if sum == 0 {
		return 0
	}
	return w.DataSize / sum
}
