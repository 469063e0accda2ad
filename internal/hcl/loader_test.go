package hcl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/wfplan/internal/config"
	"github.com/specialistvlad/wfplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AllBlocks(t *testing.T) {
	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{
		"planner.hcl": `
			job_type "mProject" {
			  exec_time        = 599.75
			  comm_before      = 18
			  comm_after       = 3
			  cpu_instructions = 2997234631314
			  data_size        = 100 * MB
			}
			resource "alphai7" {
			  mips       = 13880.35
			  base_power = 65
			}
			network {
			  bandwidth     = 1 * Gbps
			  network_power = 20
			}
			calibration "mProject" "alphai7" {
			  time_factor = 1.2
			}
			scheduler {
			  policy       = "weighted"
			  energy_aware = true
			}
		`,
	})

	// --- Act ---
	model, err := NewLoader().Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)

	want := &config.Model{
		JobTypes: map[string]*config.JobType{
			"mProject": {Name: "mProject", ExecTime: 599.75, CommBefore: 18, CommAfter: 3, CPUInstructions: 2997234631314, DataSize: 100e6},
		},
		Resources: map[string]*config.Resource{
			"alphai7": {ID: "alphai7", MIPS: 13880.35, BasePower: 65},
		},
		Network: &config.Network{Bandwidth: 125e6, Power: 20},
		Calibrations: []*config.Calibration{
			{JobType: "mProject", ResourceID: "alphai7", TimeFactor: 1.2, EnergyFactor: 1},
		},
		Scheduler: &config.Scheduler{Policy: "weighted", Selector: "earliest_start", EnergyAware: true},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_LaterFilesOverride(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"a.hcl":        `job_type "mAdd" { exec_time = 10 }`,
		"nested/b.hcl": `job_type "mAdd" { exec_time = 20 }`,
		"notes.txt":    `job_type "mAdd" { exec_time = 30 }`,
	})

	model, err := NewLoader().Load(context.Background(), dir)

	require.NoError(t, err)
	require.Contains(t, model.JobTypes, "mAdd")
	assert.Equal(t, 20.0, model.JobTypes["mAdd"].ExecTime)
	assert.Nil(t, model.Network)
	assert.Nil(t, model.Scheduler)
}

func TestLoad_SingleFile(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"one.hcl": `resource "beta" { mips = 4000 }`,
		"two.hcl": `resource "gamma" { mips = 5000 }`,
	})

	model, err := NewLoader().Load(context.Background(), filepath.Join(dir, "one.hcl"))

	require.NoError(t, err)
	assert.Len(t, model.Resources, 1)
	assert.Contains(t, model.Resources, "beta")
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "syntax error",
			content: `job_type "mAdd" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "missing required attribute",
			content: `resource "alpha" { base_power = 10 }`,
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "unknown variable",
			content: `job_type "mAdd" { exec_time = 3 * TB }`,
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "negative value",
			content: `job_type "mAdd" { exec_time = -1 }`,
			wantErr: `job_type "mAdd"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := testutil.WriteFiles(t, map[string]string{"bad.hcl": tc.content})

			_, err := NewLoader().Load(context.Background(), dir)

			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	assert.ErrorContains(t, err, "error accessing config path")
}

func TestNewEvalContext_Units(t *testing.T) {
	evalCtx, err := newEvalContext()
	require.NoError(t, err)

	gbps := evalCtx.Variables["Gbps"].AsBigFloat()
	got, _ := gbps.Float64()
	assert.Equal(t, 125e6, got)
	assert.Len(t, evalCtx.Variables, len(Units))
}
