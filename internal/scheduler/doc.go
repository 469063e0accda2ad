// Package scheduler is the planning engine: a greedy HEFT-style list
// scheduler over the combined multi-workflow graph.
//
// # How It Works
//
// The engine ranks every job (rejecting cyclic graphs before any assignment),
// then hands control to a Policy. A policy decides which job goes next; a
// ResourceSelector decides where it goes. The shared Run carries the mutable
// state of one planning pass: resource timelines, the execution counter and
// the ledger being filled.
//
// Policies:
//   - Tiered (default): each iteration recomputes the ready set, keeps only
//     jobs of the highest preference class present in it, and picks the one
//     with the largest upward rank. Ties go to the job declared first.
//   - HEFT: the same loop without preference gating.
//   - Weighted: one workflow at a time, jobs drawn from a max-priority queue
//     whose priority is the mean per-resource duration scaled by the
//     workflow's preference weight.
//
// Selectors:
//   - EarliestStart minimizes the candidate start time.
//   - EarliestFinish minimizes the candidate finish time.
//   - MinimumEnergy minimizes estimated energy, then start time.
//   - MinimumPowerTime minimizes base power times duration; the weighted
//     policy uses it for energy jobs.
//
// All ties fall back to resource list order, so a run is fully deterministic
// for a given graph and resource list.
//
// # Relationship with Other Components
//
//   - Graph: source of jobs and edges; receives each assignment.
//   - rank: upward ranks, computed at the start of every Schedule call.
//   - estimator: energy figures for jobs with an instruction or data profile.
//   - ledger: the result, sealed when Schedule returns.
package scheduler
