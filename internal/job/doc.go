// Package job defines the core planning entities: jobs, their preference
// classes and the resources they are planned onto.
//
// Jobs are created once from a static graph description and never structurally
// modified. Only the scheduling state (execution number, start, finish and
// resource) transitions from unset to set, exactly once, through Assign.
package job
