// Package calibration holds the historical correction factors applied by the
// cost estimator, and the profiler that derives them from observed runs.
//
// A factor is relative to the first observed run of a job type on a
// resource: 1.0 means "as fast (or as frugal) as the baseline run". Missing
// entries default to 1.0 for both time and energy.
package calibration
