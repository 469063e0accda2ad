// Package costs holds the job-type cost table: per job type, its execution
// time, inbound and outbound communication costs and, optionally, the
// instruction count and data volume used by the cost estimator.
//
// A table is an explicit value injected into the rank calculator, the
// scheduler and the estimator. Looking up a type the table does not know
// yields the zero profile: an unknown job costs nothing.
package costs
