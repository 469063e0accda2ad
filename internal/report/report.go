package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specialistvlad/wfplan/internal/ledger"
	"github.com/specialistvlad/wfplan/internal/topologystore"
)

// Source is the read side of a sealed ledger.
type Source interface {
	RunID() string
	Assignments() []ledger.Assignment
	JobCount() int
	DependencyCount() int
	Makespan() float64
	Workflows() []topologystore.Workflow
}

// Options control what is written.
type Options struct {
	// IncludePreference adds the preference column. Plain HEFT runs leave it out.
	IncludePreference bool
	// Policy is echoed in the summary when set.
	Policy string
	// TotalEnergy is the estimated energy of the plan, in Joules.
	TotalEnergy float64
}

// Header returns the CSV column names.
func Header(opts Options) []string {
	cols := []string{"execution_number", "workflow_id", "workflow_folder_path", "job_name"}
	if opts.IncludePreference {
		cols = append(cols, "preference")
	}
	return append(cols, "assigned_resource", "estimated_start", "estimated_finish", "upward_rank")
}

// SummaryPath derives the summary file name from the CSV path:
// "out/plan.csv" becomes "out/plan_summary.txt".
func SummaryPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + "_summary.txt"
}

// WriteSchedule writes the assignments to path. Nothing is left at path if
// writing fails.
func WriteSchedule(path string, src Source, opts Options) error {
	return writeAtomic(path, func(w io.Writer) error {
		return encodeCSV(w, src.Assignments(), opts)
	})
}

// WriteSummary writes the run summary to path.
func WriteSummary(path string, src Source, opts Options) error {
	return writeAtomic(path, func(w io.Writer) error {
		return encodeSummary(w, src, opts)
	})
}

// Write writes both the CSV and its summary. Both are fully written before
// either is moved into place, and the CSV goes last: a failed call never
// leaves a CSV behind.
func Write(csvPath string, src Source, opts Options) error {
	schedule, err := stage(csvPath, func(w io.Writer) error {
		return encodeCSV(w, src.Assignments(), opts)
	})
	if err != nil {
		return err
	}
	summary, err := stage(SummaryPath(csvPath), func(w io.Writer) error {
		return encodeSummary(w, src, opts)
	})
	if err != nil {
		schedule.discard()
		return err
	}

	if err := summary.commit(); err != nil {
		summary.discard()
		schedule.discard()
		return err
	}
	if err := schedule.commit(); err != nil {
		schedule.discard()
		return err
	}
	return nil
}

func encodeCSV(w io.Writer, rows []ledger.Assignment, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(opts)); err != nil {
		return err
	}
	for _, a := range rows {
		rec := []string{strconv.Itoa(a.ExecutionNumber), a.WorkflowID, a.WorkflowPath, a.JobName}
		if opts.IncludePreference {
			rec = append(rec, a.Preference.String())
		}
		rec = append(rec, a.Resource, format(a.Start), format(a.Finish), format(a.Rank))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeSummary(w io.Writer, src Source, opts Options) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Schedule Summary:")
	fmt.Fprintln(bw, strings.Repeat("-", 40))
	fmt.Fprintf(bw, "Run ID: %s\n", src.RunID())
	if opts.Policy != "" {
		fmt.Fprintf(bw, "Policy: %s\n", opts.Policy)
	}
	fmt.Fprintf(bw, "Total Jobs: %d\n", src.JobCount())
	fmt.Fprintf(bw, "Total Dependencies: %d\n", src.DependencyCount())
	fmt.Fprintf(bw, "Makespan: %s seconds\n", format(src.Makespan()))
	fmt.Fprintf(bw, "Total Estimated Energy: %s J\n", format(opts.TotalEnergy))
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Workflow Folders Processed:")
	for _, wf := range src.Workflows() {
		fmt.Fprintf(bw, "%s: %s\n", wf.ID, wf.Path)
	}
	return bw.Flush()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// staged is a fully written temp file waiting to be renamed over path.
type staged struct {
	tmp  string
	path string
}

func (s staged) commit() error {
	if err := os.Rename(s.tmp, s.path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", s.path, err)
	}
	return nil
}

func (s staged) discard() {
	os.Remove(s.tmp)
}

// stage writes into a temp file in the directory of path. The temp file is
// removed again if writing fails.
func stage(path string, fill func(io.Writer) error) (_ staged, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return staged{}, fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = fill(tmp); err != nil {
		return staged{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return staged{}, fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return staged{}, fmt.Errorf("failed to close %s: %w", path, err)
	}
	return staged{tmp: tmp.Name(), path: path}, nil
}

// writeAtomic stages path and renames it into place once fully written.
func writeAtomic(path string, fill func(io.Writer) error) error {
	s, err := stage(path, fill)
	if err != nil {
		return err
	}
	if err := s.commit(); err != nil {
		s.discard()
		return err
	}
	return nil
}
