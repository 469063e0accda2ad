package app

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/specialistvlad/wfplan/internal/hcl"
	"github.com/specialistvlad/wfplan/internal/testutil"
	"github.com/stretchr/testify/require"
)

// SetupAppTest creates a new app instance for system testing. Command
// output is returned in the first buffer, logs in the second.
func SetupAppTest(t *testing.T, cfg *Config) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()

	out := &bytes.Buffer{}
	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"

	testApp, err := NewApp(context.Background(), out, logBuffer, cfg, hcl.NewLoader())
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("WFPLAN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, out, logBuffer
}
