// Package graph provides a single facade over the combined multi-workflow
// job graph.
//
// The topology store holds the structure; the jobs themselves carry their
// scheduling state. Graph joins the two so the rank calculator and the
// scheduling engine work against one API:
//
//	┌─────────────────────────────────────┐
//	│           Graph Facade              │
//	│  (rank calculator, scheduler,       │
//	│   ledger validation)                │
//	└──────────┬────────────┬─────────────┘
//	           │            │
//	           ▼            ▼
//	  ┌────────────┐  ┌────────────┐
//	  │  Topology  │  │  Job state │
//	  │   Store    │  │ (job.Job)  │
//	  └────────────┘  └────────────┘
//
// # Lifecycle
//
//  1. Created with a topology store injected.
//  2. Populated while workflow files are loaded (AddWorkflow, AddJob, AddDependency).
//  3. Ranked, then scheduled. Scheduling state moves from unset to set exactly once per job.
//  4. Discarded after the report is written.
//
// A planning run is sequential. The facade inherits the store's locking but
// does not guard the job structs themselves.
package graph
