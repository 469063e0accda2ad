// Package ledger records the assignments produced by a scheduling run and
// derives the figures reported about it: makespan, job and dependency
// counts, the workflows processed and the planned energy.
//
// Assignments are keyed by execution number. The sorted view is built lazily
// and cached until the next Record. Once sealed, a ledger is read-only.
package ledger
