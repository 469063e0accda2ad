// Package probe samples the live CPU load of the local host.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/specialistvlad/wfplan/internal/ctxlog"
)

// TimesFunc returns aggregate CPU times.
type TimesFunc func(ctx context.Context) (cpu.TimesStat, error)

// Probe measures CPU utilisation between two samples.
type Probe struct {
	times TimesFunc
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a probe reading the host's CPU counters.
func New() *Probe {
	return &Probe{times: hostTimes, sleep: sleepCtx}
}

func hostTimes(ctx context.Context) (cpu.TimesStat, error) {
	res, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return cpu.TimesStat{}, err
	}
	if len(res) == 0 {
		return cpu.TimesStat{}, errors.New("no cpu times reported")
	}
	return res[0], nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CPULoad returns the busy percentage, 0 to 100, observed over interval.
func (p *Probe) CPULoad(ctx context.Context, interval time.Duration) (float64, error) {
	before, err := p.times(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu times: %w", err)
	}
	if err := p.sleep(ctx, interval); err != nil {
		return 0, err
	}
	after, err := p.times(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu times: %w", err)
	}

	load := busyPercent(before, after)
	ctxlog.FromContext(ctx).Debug("CPU load sampled.", "interval", interval, "cpu_load", load)
	return load, nil
}

func busyPercent(before, after cpu.TimesStat) float64 {
	idle := (after.Idle + after.Iowait) - (before.Idle + before.Iowait)
	busy := (after.User + after.Nice + after.System + after.Irq + after.Softirq + after.Steal) -
		(before.User + before.Nice + before.System + before.Irq + before.Softirq + before.Steal)

	total := idle + busy
	if total <= 0 {
		return 0
	}
	return min(max(busy/total*100, 0), 100)
}
