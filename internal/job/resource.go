package job

import "fmt"

// Resource is a compute slot jobs are planned onto.
type Resource struct {
	ID        string
	Processor string
	// MIPS is the measured throughput in millions of instructions per second.
	// Zero means unknown.
	MIPS float64
	// BasePower is the resource's power draw in watts.
	BasePower float64
	// CPULoad is the current utilisation percentage fed to the estimator.
	CPULoad float64

	// AvailableTime is the earliest time at which the resource is free.
	AvailableTime float64
}

// Advance moves the resource's available time forward.
func (r *Resource) Advance(t float64) error {
	if t < r.AvailableTime {
		return fmt.Errorf("resource %s: available time cannot move backwards from %.2f to %.2f", r.ID, r.AvailableTime, t)
	}
	r.AvailableTime = t
	return nil
}

// CloneResources returns deep copies so a planning run never mutates the
// caller's catalog.
func CloneResources(in []*Resource) []*Resource {
	out := make([]*Resource, len(in))
	for i, r := range in {
		c := *r
		out[i] = &c
	}
	return out
}
