package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/wfplan/internal/costs"
	"github.com/specialistvlad/wfplan/internal/estimator"
	"github.com/specialistvlad/wfplan/internal/graph"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/ledger"
	"github.com/specialistvlad/wfplan/internal/rank"
	"github.com/specialistvlad/wfplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diamondCosts() *costs.Table {
	return costs.NewTable(map[string]costs.Profile{
		"T1": {ExecTime: 10},
		"T2": {ExecTime: 8},
		"T3": {ExecTime: 12},
		"T4": {ExecTime: 15},
	})
}

func diamond(id string, pref job.Preference, weight float64) testutil.Workflow {
	return testutil.Workflow{
		ID:         id,
		Preference: pref,
		Weight:     weight,
		Jobs:       []string{"T1", "T2", "T3", "T4"},
		Edges:      []string{"T1->T2", "T1->T3", "T2->T4", "T3->T4"},
	}
}

func twoProcessors() []*job.Resource {
	return []*job.Resource{
		{ID: "P1", BasePower: 100},
		{ID: "P2", BasePower: 150},
	}
}

func montage(id string, pref job.Preference) testutil.Workflow {
	return testutil.Workflow{
		ID:         id,
		Preference: pref,
		Jobs: []string{
			"mProject_1", "mProject_2", "mDiffFit_1", "mConcatFit_1", "mBgModel_1",
			"mBackground_1", "mBackground_2", "mImgtbl_1", "mAdd_1", "mViewer_1",
		},
		Edges: []string{
			"mProject_1->mDiffFit_1", "mProject_2->mDiffFit_1",
			"mDiffFit_1->mConcatFit_1", "mConcatFit_1->mBgModel_1",
			"mBgModel_1->mBackground_1", "mBgModel_1->mBackground_2",
			"mProject_1->mBackground_1", "mProject_2->mBackground_2",
			"mBackground_1->mImgtbl_1", "mBackground_2->mImgtbl_1",
			"mImgtbl_1->mAdd_1", "mBackground_1->mAdd_1", "mBackground_2->mAdd_1",
			"mAdd_1->mViewer_1",
		},
	}
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

type placement struct {
	Exec     int
	Resource string
	Start    float64
	Finish   float64
}

func placements(l *ledger.Ledger) map[string]placement {
	out := make(map[string]placement)
	for _, a := range l.Assignments() {
		out[a.JobName] = placement{a.ExecutionNumber, a.Resource, a.Start, a.Finish}
	}
	return out
}

func TestSchedule_DiamondScenario(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.LogContext(t)
	g := testutil.NewGraph(t, diamond("wf", job.Performance, 0))
	e := newEngine(t, Config{Costs: diamondCosts()})

	// --- Act ---
	l, err := e.Schedule(ctx, g, twoProcessors())

	// --- Assert ---
	require.NoError(t, err)
	want := map[string]placement{
		"T1": {1, "P1", 0, 10},
		"T3": {2, "P1", 10, 22},
		"T2": {3, "P2", 10, 18},
		"T4": {4, "P1", 22, 37},
	}
	if diff := cmp.Diff(want, placements(l)); diff != "" {
		t.Errorf("placements mismatch (-want +got):\n%s", diff)
	}
	// Critical path along the costlier branch: T1 + T3 + T4.
	assert.Equal(t, 37.0, l.Makespan())
	assert.Equal(t, 4, l.JobCount())
	assert.Equal(t, 4, l.DependencyCount())
	assert.True(t, l.Sealed())
}

func TestSchedule_CallerResourcesUntouched(t *testing.T) {
	g := testutil.NewGraph(t, diamond("wf", job.Performance, 0))
	res := twoProcessors()

	_, err := newEngine(t, Config{Costs: diamondCosts()}).Schedule(context.Background(), g, res)

	require.NoError(t, err)
	for _, r := range res {
		assert.Zero(t, r.AvailableTime)
	}
}

func TestSchedule_Properties(t *testing.T) {
	policies := []Policy{Tiered{}, HEFT{}, Weighted{}}
	for _, policy := range policies {
		t.Run(policy.Name(), func(t *testing.T) {
			// --- Arrange ---
			ctx := context.Background()
			table := costs.Montage()
			g := testutil.NewGraph(t,
				montage("energy", job.Energy),
				montage("perf", job.Performance),
				montage("bal", job.Balanced),
			)
			res := []*job.Resource{{ID: "a", BasePower: 65}, {ID: "b", BasePower: 55}, {ID: "c", BasePower: 15}}
			e := newEngine(t, Config{Policy: policy, Costs: table})

			// --- Act ---
			l, err := e.Schedule(ctx, g, res)

			// --- Assert ---
			require.NoError(t, err)
			require.NoError(t, l.Validate(ctx, g, table))
			assertPermutation(t, l)
			assertPrecedence(t, ctx, g, table)
			assertNoOverlap(t, l)
		})
	}
}

func TestSchedule_TierGating(t *testing.T) {
	ctx := context.Background()
	g := testutil.NewGraph(t,
		montage("energy", job.Energy),
		montage("bal", job.Balanced),
		montage("perf", job.Performance),
	)
	e := newEngine(t, Config{Costs: costs.Montage()})

	l, err := e.Schedule(ctx, g, []*job.Resource{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)

	assertGating(t, ctx, g, l)
	// With one preference per workflow and no cross-workflow edges, the
	// classes drain strictly in order.
	var order []job.Preference
	for _, a := range l.Assignments() {
		if len(order) == 0 || order[len(order)-1] != a.Preference {
			order = append(order, a.Preference)
		}
	}
	assert.Equal(t, []job.Preference{job.Performance, job.Balanced, job.Energy}, order)
}

func TestSchedule_HEFTIgnoresPreference(t *testing.T) {
	table := costs.NewTable(map[string]costs.Profile{
		"big":   {ExecTime: 100},
		"small": {ExecTime: 1},
	})
	res := []*job.Resource{{ID: "only"}}

	testCases := []struct {
		policy    Policy
		wantFirst string
	}{
		{Tiered{}, "small"},
		{HEFT{}, "big"},
	}
	for _, tc := range testCases {
		t.Run(tc.policy.Name(), func(t *testing.T) {
			g := testutil.NewGraph(t,
				testutil.Workflow{ID: "e", Preference: job.Energy, Jobs: []string{"big"}},
				testutil.Workflow{ID: "p", Preference: job.Performance, Jobs: []string{"small"}},
			)
			l, err := newEngine(t, Config{Policy: tc.policy, Costs: table}).Schedule(context.Background(), g, res)
			require.NoError(t, err)
			assert.Equal(t, tc.wantFirst, l.Assignments()[0].JobName)
		})
	}
}

func TestSchedule_RankTieGoesToFirstDeclared(t *testing.T) {
	table := costs.NewTable(map[string]costs.Profile{"x": {ExecTime: 5}})
	g := testutil.NewGraph(t, testutil.Workflow{ID: "wf", Jobs: []string{"x_b", "x_a", "x_c"}})

	l, err := newEngine(t, Config{Costs: table}).Schedule(context.Background(), g, []*job.Resource{{ID: "r"}})

	require.NoError(t, err)
	var names []string
	for _, a := range l.Assignments() {
		names = append(names, a.JobName)
	}
	assert.Equal(t, []string{"x_b", "x_a", "x_c"}, names)
}

func TestSchedule_ZeroEdgesStartAtZero(t *testing.T) {
	table := costs.NewTable(map[string]costs.Profile{"j": {ExecTime: 7}})
	g := testutil.NewGraph(t, testutil.Workflow{ID: "wf", Jobs: []string{"j_1", "j_2", "j_3"}})
	res := []*job.Resource{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}, {ID: "r4"}}

	l, err := newEngine(t, Config{Costs: table}).Schedule(context.Background(), g, res)

	require.NoError(t, err)
	used := make(map[string]bool)
	for _, a := range l.Assignments() {
		assert.Zero(t, a.Start, "job %s", a.JobName)
		assert.Equal(t, 7.0, a.Finish)
		used[a.Resource] = true
	}
	assert.Len(t, used, 3)
	assert.Equal(t, 0, l.DependencyCount())
}

func TestSchedule_CommunicationAcrossResources(t *testing.T) {
	table := costs.NewTable(map[string]costs.Profile{
		"a": {ExecTime: 10, CommAfter: 5},
		"b": {ExecTime: 1},
	})
	// Two independent chains compete for the first resource.
	g := testutil.NewGraph(t, testutil.Workflow{
		ID:    "wf",
		Jobs:  []string{"a_1", "a_2", "b_1"},
		Edges: []string{"a_1->b_1"},
	})

	l, err := newEngine(t, Config{Costs: table}).Schedule(context.Background(), g, []*job.Resource{{ID: "r1"}, {ID: "r2"}})

	require.NoError(t, err)
	got := placements(l)
	assert.Equal(t, placement{1, "r1", 0, 10}, got["a_1"])
	assert.Equal(t, placement{2, "r2", 0, 10}, got["a_2"])
	// r1 is free at 10 with no transfer; r2 is free at 10 but must wait for a_1's output until 15.
	assert.Equal(t, placement{3, "r1", 10, 11}, got["b_1"])
}

func TestSchedule_MinimumEnergyForEnergyClass(t *testing.T) {
	table := costs.NewTable(map[string]costs.Profile{"j": {ExecTime: 10}})
	res := []*job.Resource{{ID: "hungry", BasePower: 150}, {ID: "frugal", BasePower: 100}}

	testCases := []struct {
		name      string
		selectors map[job.Preference]ResourceSelector
		want      string
	}{
		{"default picks earliest start", nil, "hungry"},
		{"energy aware picks lowest energy", map[job.Preference]ResourceSelector{job.Energy: MinimumEnergy{}}, "frugal"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := testutil.NewGraph(t, testutil.Workflow{ID: "wf", Preference: job.Energy, Jobs: []string{"j_1"}})
			l, err := newEngine(t, Config{Costs: table, Selectors: tc.selectors}).Schedule(context.Background(), g, res)
			require.NoError(t, err)
			assert.Equal(t, tc.want, l.Assignments()[0].Resource)
			assert.InDelta(t, map[string]float64{"hungry": 1500, "frugal": 1000}[tc.want], l.TotalEnergy(res), 1e-9)
		})
	}
}

func TestSchedule_EstimatorEnergy(t *testing.T) {
	table := costs.NewTable(map[string]costs.Profile{"calc": {ExecTime: 5, CPUInstructions: 1e9}})
	res := []*job.Resource{{ID: "fast", MIPS: 1000, BasePower: 10}, {ID: "slow", MIPS: 100, BasePower: 5}}
	energyAware := map[job.Preference]ResourceSelector{job.Energy: MinimumEnergy{}}

	testCases := []struct {
		name string
		est  *estimator.Estimator
		want string
	}{
		// Without the estimator both take 5s: 50J versus 25J.
		{"power times duration", nil, "slow"},
		// With it, fast needs 1s at 10W and slow 10s at 5W.
		{"estimated consumption", estimator.New(nil), "fast"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := testutil.NewGraph(t, testutil.Workflow{ID: "wf", Preference: job.Energy, Jobs: []string{"calc_1"}})
			e := newEngine(t, Config{Costs: table, Selectors: energyAware, Estimator: tc.est})

			l, err := e.Schedule(context.Background(), g, res)

			require.NoError(t, err)
			assert.Equal(t, tc.want, l.Assignments()[0].Resource)
		})
	}
}

func TestSchedule_EstimatorErrorIsFatal(t *testing.T) {
	table := costs.NewTable(map[string]costs.Profile{"calc": {ExecTime: 5, CPUInstructions: 1e9}})
	g := testutil.NewGraph(t, testutil.Workflow{ID: "wf", Preference: job.Energy, Jobs: []string{"calc_1"}})
	e := newEngine(t, Config{
		Costs:     table,
		Selectors: map[job.Preference]ResourceSelector{job.Energy: MinimumEnergy{}},
		Estimator: estimator.New(nil),
	})

	_, err := e.Schedule(context.Background(), g, []*job.Resource{{ID: "nomips"}})

	assert.ErrorIs(t, err, estimator.ErrInvalidResource)
}

func TestSchedule_MIPSAware(t *testing.T) {
	table := costs.NewTable(map[string]costs.Profile{"j": {ExecTime: 10}})
	res := []*job.Resource{{ID: "slow", MIPS: 500}, {ID: "fast", MIPS: 1000}, {ID: "unrated"}}

	testCases := []struct {
		name       string
		cfg        Config
		wantRes    string
		wantFinish float64
	}{
		{"plain durations", Config{}, "slow", 10},
		{"scaled, earliest start keeps list order", Config{MIPSAware: true}, "slow", 20},
		{"scaled, earliest finish prefers speed", Config{MIPSAware: true, Default: EarliestFinish{}}, "fast", 10},
		{"explicit reference", Config{MIPSAware: true, ReferenceMIPS: 500, Default: EarliestFinish{}}, "fast", 5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := testutil.NewGraph(t, testutil.Workflow{ID: "wf", Jobs: []string{"j_1"}})
			tc.cfg.Costs = table

			l, err := newEngine(t, tc.cfg).Schedule(context.Background(), g, res)

			require.NoError(t, err)
			a := l.Assignments()[0]
			assert.Equal(t, tc.wantRes, a.Resource)
			assert.Equal(t, tc.wantFinish, a.Finish)
		})
	}
}

func TestSchedule_CycleRejectedBeforeAssignment(t *testing.T) {
	g := testutil.NewGraph(t, testutil.Workflow{
		ID:    "wf",
		Jobs:  []string{"A", "B", "C"},
		Edges: []string{"A->B", "B->C", "C->A"},
	})

	l, err := newEngine(t, Config{}).Schedule(context.Background(), g, twoProcessors())

	assert.Nil(t, l)
	require.ErrorIs(t, err, rank.ErrCyclicDependency)
	for _, j := range g.Jobs(context.Background()) {
		assert.Zero(t, j.ExecutionNumber)
	}
}

func TestSchedule_EmptyResources(t *testing.T) {
	g := testutil.NewGraph(t, diamond("wf", job.Performance, 0))

	_, err := newEngine(t, Config{}).Schedule(context.Background(), g, nil)

	assert.ErrorIs(t, err, ErrResourceListEmpty)
	assert.Zero(t, testutil.MustJob(t, g, "wf", "T1").Rank, "nothing runs before the resource check")
}

func TestSchedule_EmptyGraph(t *testing.T) {
	g := testutil.NewGraph(t)
	l, err := newEngine(t, Config{}).Schedule(context.Background(), g, twoProcessors())
	require.NoError(t, err)
	assert.Zero(t, l.JobCount())
	assert.Zero(t, l.Makespan())
}

func TestSchedule_CancelledContext(t *testing.T) {
	g := testutil.NewGraph(t, diamond("wf", job.Performance, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(t, Config{Costs: diamondCosts()}).Schedule(ctx, g, twoProcessors())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Validates(t *testing.T) {
	_, err := New(Config{ReferenceMIPS: -1})
	assert.Error(t, err)

	e, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "tiered", e.Policy().Name())
}

func TestUnschedulableError(t *testing.T) {
	g := testutil.NewGraph(t, diamond("wf", job.Performance, 0))
	err := unschedulable(g.Jobs(context.Background()))

	assert.ErrorIs(t, err, ErrUnschedulableGraph)
	var ue *UnschedulableError
	require.True(t, errors.As(err, &ue))
	assert.Len(t, ue.Pending, 4)
	assert.Contains(t, err.Error(), "4 job(s) pending")
	assert.Contains(t, err.Error(), "wf:T1")
}

func TestGate(t *testing.T) {
	mk := func(name string, p job.Preference) *job.Job {
		j, err := job.New("wf", "", name, p)
		require.NoError(t, err)
		return j
	}
	e1, b1, e2, b2 := mk("e1", job.Energy), mk("b1", job.Balanced), mk("e2", job.Energy), mk("b2", job.Balanced)

	assert.Equal(t, []*job.Job{b1, b2}, gate([]*job.Job{e1, b1, e2, b2}))
	assert.Equal(t, []*job.Job{e1, e2}, gate([]*job.Job{e1, e2}))
	assert.Nil(t, gate(nil))
	assert.Nil(t, highestRank(nil))
}

func assertPermutation(t *testing.T, l *ledger.Ledger) {
	t.Helper()
	for i, a := range l.Assignments() {
		assert.Equal(t, i+1, a.ExecutionNumber)
	}
}

func assertPrecedence(t *testing.T, ctx context.Context, g graph.Graph, table *costs.Table) {
	t.Helper()
	for _, j := range g.Jobs(ctx) {
		assert.InDelta(t, table.Profile(j.Type).ExecTime, j.Finish-j.Start, 1e-9, "duration of %s", j.ID)
		parents, err := g.ParentsOf(ctx, j.ID)
		require.NoError(t, err)
		for _, p := range parents {
			ready := p.Finish
			if p.Resource != j.Resource {
				ready += table.Profile(p.Type).CommAfter
			}
			assert.GreaterOrEqual(t, j.Start, ready, "%s starts before %s is available", j.ID, p.ID)
		}
	}
}

func assertNoOverlap(t *testing.T, l *ledger.Ledger) {
	t.Helper()
	as := l.Assignments()
	for i := range as {
		for k := i + 1; k < len(as); k++ {
			a, b := as[i], as[k]
			if a.Resource != b.Resource {
				continue
			}
			overlap := a.Start < b.Finish && b.Start < a.Finish && a.Duration() > 0 && b.Duration() > 0
			assert.False(t, overlap, "%s and %s overlap on %s", a.JobID, b.JobID, a.Resource)
		}
	}
}

// assertGating replays the run: when a job got execution number n, no job in
// that iteration's ready set may have outranked its preference class.
func assertGating(t *testing.T, ctx context.Context, g graph.Graph, l *ledger.Ledger) {
	t.Helper()
	jobs := g.Jobs(ctx)
	for _, a := range l.Assignments() {
		n := a.ExecutionNumber
		for _, other := range jobs {
			if other.ExecutionNumber <= n {
				continue
			}
			parents, err := g.ParentsOf(ctx, other.ID)
			require.NoError(t, err)
			readyAtN := true
			for _, p := range parents {
				if p.ExecutionNumber >= n {
					readyAtN = false
					break
				}
			}
			if readyAtN {
				assert.False(t, other.Preference.Outranks(a.Preference),
					"%s (%s) scheduled while %s (%s) was ready", a.JobID, a.Preference, other.ID, other.Preference)
			}
		}
	}
}
