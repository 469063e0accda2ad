package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeProbe(samples ...cpu.TimesStat) *Probe {
	i := 0
	return &Probe{
		times: func(context.Context) (cpu.TimesStat, error) {
			s := samples[i]
			i++
			return s, nil
		},
		sleep: func(context.Context, time.Duration) error { return nil },
	}
}

func TestCPULoad(t *testing.T) {
	testCases := []struct {
		name   string
		before cpu.TimesStat
		after  cpu.TimesStat
		want   float64
	}{
		{
			name:   "one third busy",
			before: cpu.TimesStat{User: 10, Idle: 90},
			after:  cpu.TimesStat{User: 20, System: 5, Idle: 120},
			want:   (15.0 / 45.0) * 100,
		},
		{
			name:   "iowait counts as idle",
			before: cpu.TimesStat{},
			after:  cpu.TimesStat{User: 50, Iowait: 50},
			want:   50,
		},
		{
			name:   "no progress",
			before: cpu.TimesStat{User: 5, Idle: 5},
			after:  cpu.TimesStat{User: 5, Idle: 5},
			want:   0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := fakeProbe(tc.before, tc.after)

			got, err := p.CPULoad(context.Background(), time.Second)

			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCPULoad_Errors(t *testing.T) {
	boom := errors.New("boom")
	p := &Probe{
		times: func(context.Context) (cpu.TimesStat, error) { return cpu.TimesStat{}, boom },
		sleep: sleepCtx,
	}
	_, err := p.CPULoad(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fakeProbe(cpu.TimesStat{}, cpu.TimesStat{}).CPULoad(ctx, time.Millisecond)
	require.NoError(t, err, "fake sleep ignores cancellation")

	p = &Probe{times: fakeProbe(cpu.TimesStat{}).times, sleep: sleepCtx}
	_, err = p.CPULoad(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
