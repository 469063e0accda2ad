package integrationtests

import (
	"testing"

	"github.com/specialistvlad/wfplan/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSingleJobsHCL = `
	job_type "A" { exec_time = 10 }
	job_type "B" { exec_time = 5 }
	resource "P1" {
	  mips       = 1000
	  base_power = 100
	}
`

// TestPlan_TieredGatesLowerClasses verifies that a performance workflow is
// planned ahead of a balanced one even when its jobs rank lower.
func TestPlan_TieredGatesLowerClasses(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"planner.hcl":   twoSingleJobsHCL,
		"resources.txt": "P1",
		"slow/w.dag":    "JOB A a.sub",
		"fast/w.dag":    "JOB B b.sub",
	}
	cfg := app.Config{
		Workflows: []app.WorkflowSource{
			{Folder: "slow", Preference: "balanced", Weight: app.DefaultWeight},
			{Folder: "fast", Preference: "performance", Weight: app.DefaultWeight},
		},
	}

	// --- Act ---
	res := runPlan(t, files, cfg)

	// --- Assert ---
	require.Equal(t, []string{
		"1,workflow_2," + res.folder("fast") + ",B,performance,P1,0.00,5.00,5.00",
		"2,workflow_1," + res.folder("slow") + ",A,balanced,P1,5.00,15.00,10.00",
	}, res.rows)
	assert.Contains(t, res.summary, "Makespan: 15.00 seconds")
	assert.Contains(t, res.summary, "Policy: tiered")
}

// TestPlan_HEFTIgnoresPreferences verifies that the ungated policy orders
// jobs by rank alone.
func TestPlan_HEFTIgnoresPreferences(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"planner.hcl":   twoSingleJobsHCL + "\nscheduler {\n  policy = \"heft\"\n}\n",
		"resources.txt": "P1",
		"slow/w.dag":    "JOB A a.sub",
		"fast/w.dag":    "JOB B b.sub",
	}
	cfg := app.Config{
		Workflows: []app.WorkflowSource{
			{Folder: "slow", Preference: "balanced", Weight: app.DefaultWeight},
			{Folder: "fast", Preference: "performance", Weight: app.DefaultWeight},
		},
	}

	// --- Act ---
	res := runPlan(t, files, cfg)

	// --- Assert ---
	require.Equal(t, []string{
		"1,workflow_1," + res.folder("slow") + ",A,P1,0.00,10.00,10.00",
		"2,workflow_2," + res.folder("fast") + ",B,P1,10.00,15.00,5.00",
	}, res.rows)
	assert.Contains(t, res.summary, "Policy: heft")
}

// TestPlan_EnergyAwareSelection verifies the energy_aware switch of the
// scheduler block, and that the command line overrides it.
func TestPlan_EnergyAwareSelection(t *testing.T) {
	const hcl = `
		job_type "E" { exec_time = 10 }
		resource "P1" {
		  mips       = 1000
		  base_power = 100
		}
		resource "P2" {
		  mips       = 1000
		  base_power = 50
		}
		scheduler {
		  energy_aware = true
		}
	`
	off := false

	testCases := []struct {
		name        string
		override    *bool
		wantRow     string
		wantSummary string
	}{
		{
			name:        "configured minimum energy",
			wantRow:     ",E,energy,P2,0.00,10.00,10.00",
			wantSummary: "Total Estimated Energy: 500.00 J",
		},
		{
			name:        "flag disables it",
			override:    &off,
			wantRow:     ",E,energy,P1,0.00,10.00,10.00",
			wantSummary: "Total Estimated Energy: 1000.00 J",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			files := map[string]string{
				"planner.hcl":   hcl,
				"resources.txt": "P1\nP2",
				"wf/w.dag":      "JOB E e.sub",
			}
			cfg := app.Config{
				Workflows:   []app.WorkflowSource{{Folder: "wf", Preference: "energy", Weight: app.DefaultWeight}},
				EnergyAware: tc.override,
			}

			// --- Act ---
			res := runPlan(t, files, cfg)

			// --- Assert ---
			require.Len(t, res.rows, 1)
			assert.Equal(t, "1,workflow_1,"+res.folder("wf")+tc.wantRow, res.rows[0])
			assert.Contains(t, res.summary, tc.wantSummary)
		})
	}
}

// TestPlan_MIPSAwareScaling verifies that execution times stretch on slower
// resources when mips_aware is set.
func TestPlan_MIPSAwareScaling(t *testing.T) {
	// --- Arrange ---
	files := map[string]string{
		"planner.hcl": `
			job_type "A" { exec_time = 12 }
			job_type "B" { exec_time = 10 }
			resource "fast" {
			  mips = 1000
			}
			resource "slow" {
			  mips = 500
			}
			scheduler {
			  mips_aware = true
			}
		`,
		"resources.txt": "fast\nslow",
		"wf/w.dag":      "JOB A a.sub\nJOB B b.sub",
	}
	cfg := app.Config{
		Workflows: []app.WorkflowSource{{Folder: "wf", Preference: "balanced", Weight: app.DefaultWeight}},
	}

	// --- Act ---
	res := runPlan(t, files, cfg)

	// --- Assert ---
	require.Equal(t, []string{
		"1,workflow_1," + res.folder("wf") + ",A,balanced,fast,0.00,12.00,12.00",
		"2,workflow_1," + res.folder("wf") + ",B,balanced,slow,0.00,20.00,10.00",
	}, res.rows)
	assert.Contains(t, res.summary, "Makespan: 20.00 seconds")
}
