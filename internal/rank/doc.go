// Package rank computes the upward rank of every job in a graph: the length
// of the longest weighted path from the job to any sink.
//
// For a job without children the rank is its execution time. Otherwise it is
// the execution time plus the maximum, over its children, of the child's rank
// plus the child's inbound communication cost. Costs come from an injected
// costs.Table, so unknown job types rank as zero-cost.
//
// The memo table lives for a single Compute call. A graph that contains a
// cycle is rejected with a *CyclicDependencyError before any rank is
// written back to the jobs.
package rank
