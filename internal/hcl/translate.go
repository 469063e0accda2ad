// This file translates the decoded HCL blocks into the format-agnostic
// configuration model defined in the config package.

package hcl

import (
	"context"

	"github.com/specialistvlad/wfplan/internal/config"
	"github.com/specialistvlad/wfplan/internal/ctxlog"
)

func (l *Loader) merge(ctx context.Context, m *config.Model, root *fileRoot, file string) {
	logger := ctxlog.FromContext(ctx).With("file", file)

	for _, jt := range root.JobTypes {
		if _, exists := m.JobTypes[jt.Name]; exists {
			logger.Debug("Overriding job type.", "job_type", jt.Name)
		}
		m.JobTypes[jt.Name] = translateJobType(jt)
	}
	for _, r := range root.Resources {
		if _, exists := m.Resources[r.ID]; exists {
			logger.Debug("Overriding resource.", "resource", r.ID)
		}
		m.Resources[r.ID] = translateResource(r)
	}
	for _, n := range root.Networks {
		if m.Network != nil {
			logger.Warn("Multiple network blocks, the last one wins.")
		}
		m.Network = translateNetwork(n)
	}
	for _, c := range root.Calibrations {
		m.Calibrations = append(m.Calibrations, translateCalibration(c))
	}
	for _, s := range root.Schedulers {
		if m.Scheduler != nil {
			logger.Warn("Multiple scheduler blocks, the last one wins.")
		}
		m.Scheduler = translateScheduler(s)
	}
}

func translateJobType(s *JobType) *config.JobType {
	return &config.JobType{
		Name:            s.Name,
		ExecTime:        s.ExecTime,
		CommBefore:      s.CommBefore,
		CommAfter:       s.CommAfter,
		CPUInstructions: s.CPUInstructions,
		DataSize:        s.DataSize,
	}
}

func translateResource(s *Resource) *config.Resource {
	return &config.Resource{ID: s.ID, MIPS: s.MIPS, BasePower: s.BasePower, CPULoad: s.CPULoad}
}

func translateNetwork(s *Network) *config.Network {
	return &config.Network{Bandwidth: s.Bandwidth, Load: s.Load, Power: s.Power, SourceLoad: s.SourceLoad}
}

func translateCalibration(s *Calibration) *config.Calibration {
	return &config.Calibration{
		JobType:      s.JobType,
		ResourceID:   s.ResourceID,
		TimeFactor:   valueOr(s.TimeFactor, 1),
		EnergyFactor: valueOr(s.EnergyFactor, 1),
	}
}

func translateScheduler(s *Scheduler) *config.Scheduler {
	d := config.DefaultScheduler()
	return &config.Scheduler{
		Policy:        valueOr(s.Policy, d.Policy),
		Selector:      valueOr(s.Selector, d.Selector),
		EnergyAware:   valueOr(s.EnergyAware, d.EnergyAware),
		MIPSAware:     valueOr(s.MIPSAware, d.MIPSAware),
		ReferenceMIPS: valueOr(s.ReferenceMIPS, d.ReferenceMIPS),
	}
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
