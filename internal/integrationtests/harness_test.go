package integrationtests

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/wfplan/internal/app"
	"github.com/specialistvlad/wfplan/internal/testutil"
	"github.com/stretchr/testify/require"
)

// planResult holds what a plan run left on disk.
type planResult struct {
	root    string
	rows    []string
	summary string
	logs    string
}

// runPlan writes files below a temp root, plans the given workflow folders
// (relative to the root) and returns the CSV rows without the header.
func runPlan(t *testing.T, files map[string]string, cfg app.Config) planResult {
	t.Helper()

	root := testutil.WriteFiles(t, files)
	if _, ok := files["planner.hcl"]; ok {
		cfg.ConfigPaths = []string{filepath.Join(root, "planner.hcl")}
	}
	for i := range cfg.Workflows {
		cfg.Workflows[i].Folder = filepath.Join(root, cfg.Workflows[i].Folder)
	}
	cfg.Command = app.CommandPlan
	cfg.ResourcesPath = filepath.Join(root, "resources.txt")
	cfg.OutputPath = filepath.Join(root, "schedule.csv")

	validated, err := app.NewConfig(cfg)
	require.NoError(t, err)
	a, _, logs := app.SetupAppTest(t, validated)

	require.NoError(t, a.Run(context.Background()))

	csv, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(csv), "\n"), "\n")
	require.NotEmpty(t, lines)

	summary, err := os.ReadFile(filepath.Join(root, "schedule_summary.txt"))
	require.NoError(t, err)

	return planResult{root: root, rows: lines[1:], summary: string(summary), logs: logs.String()}
}

// folder returns the absolute path of a workflow folder below the result root.
func (r planResult) folder(name string) string {
	return filepath.Join(r.root, name)
}
