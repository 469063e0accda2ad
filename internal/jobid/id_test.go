package jobid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name       string
		raw        string
		expectErr  bool
		expectedID ID
	}{
		{
			name:       "simple id",
			raw:        "workflow_1:mProject_ID0000012",
			expectedID: ID{Workflow: "workflow_1", Name: "mProject_ID0000012"},
		},
		{
			name:       "dotted job name",
			raw:        "w2:stage_in.local",
			expectedID: ID{Workflow: "w2", Name: "stage_in.local"},
		},
		{name: "error - empty string", raw: "", expectErr: true},
		{name: "error - missing separator", raw: "mProject_1", expectErr: true},
		{name: "error - empty workflow", raw: ":mProject_1", expectErr: true},
		{name: "error - empty name", raw: "workflow_1:", expectErr: true},
		{name: "error - extra separator", raw: "a:b:c", expectErr: true},
		{name: "error - whitespace", raw: "a:b c", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := Parse(tc.raw)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedID, id)
		})
	}
}

func TestID_RoundTrip(t *testing.T) {
	for _, raw := range []string{"workflow_1:mAdd_ID1", "w:T1", "montage-0:create_dir_montage_0_local"} {
		t.Run(raw, func(t *testing.T) {
			id, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, id.String())
		})
	}
}

func TestID_Zero(t *testing.T) {
	var id ID
	assert.True(t, id.IsZero())
	assert.Equal(t, "", id.String())
	assert.False(t, MustNew("w", "a").IsZero())
	assert.Panics(t, func() { MustNew("w", "") })
}
