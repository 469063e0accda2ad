package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/specialistvlad/wfplan/internal/graph"
	"github.com/specialistvlad/wfplan/internal/inmemorytopology"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/jobid"
	"github.com/specialistvlad/wfplan/internal/topologystore"
	"github.com/stretchr/testify/require"
)

// Workflow describes a workflow fixture. Edges use "parent->child" job names.
type Workflow struct {
	ID         string
	Preference job.Preference
	Weight     float64
	Jobs       []string
	Edges      []string
}

// NewGraph builds an in-memory graph from the given fixtures, in order.
func NewGraph(t *testing.T, workflows ...Workflow) *graph.Manager {
	t.Helper()
	ctx := context.Background()

	g := graph.New(inmemorytopology.New())
	for _, wf := range workflows {
		require.NoError(t, g.AddWorkflow(ctx, topologystore.Workflow{
			ID:         wf.ID,
			Path:       "/workflows/" + wf.ID,
			Preference: wf.Preference,
			Weight:     wf.Weight,
		}))
		for _, name := range wf.Jobs {
			j, err := job.New(wf.ID, "/workflows/"+wf.ID, name, wf.Preference)
			require.NoError(t, err)
			j.Weight = wf.Weight
			require.NoError(t, g.AddJob(ctx, j))
		}
		for _, edge := range wf.Edges {
			parent, child, ok := strings.Cut(edge, "->")
			require.True(t, ok, "edge %q must look like parent->child", edge)
			require.NoError(t, g.AddDependency(ctx,
				jobid.MustNew(wf.ID, strings.TrimSpace(parent)),
				jobid.MustNew(wf.ID, strings.TrimSpace(child)),
			))
		}
	}
	return g
}

// MustJob fetches a job by workflow and name.
func MustJob(t *testing.T, g graph.Graph, workflow, name string) *job.Job {
	t.Helper()
	j, ok := g.Job(context.Background(), jobid.MustNew(workflow, name))
	require.True(t, ok, "job %s:%s not found", workflow, name)
	return j
}
