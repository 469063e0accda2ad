package dagfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/fsutil"
	"github.com/specialistvlad/wfplan/internal/job"
	"github.com/specialistvlad/wfplan/internal/jobid"
	"github.com/specialistvlad/wfplan/internal/topologystore"
)

// Extension of dependency files.
const Extension = ".dag"

// ErrMissingGraphFile is returned when a workflow folder has no dependency file.
var ErrMissingGraphFile = errors.New("no dependency graph file found")

// Decl is a declared job.
type Decl struct {
	Name     string
	Submit   string
	Priority int
}

// Edge is a parent to child dependency, by job name.
type Edge struct {
	Parent string
	Child  string
}

// Workflow is the parsed content of one dependency file.
type Workflow struct {
	ID    string
	Path  string
	Jobs  []Decl
	Edges []Edge
}

// Parse reads a dependency file for the workflow with the given id.
func Parse(ctx context.Context, r io.Reader, workflowID string) (*Workflow, error) {
	logger := ctxlog.FromContext(ctx).With("workflow", workflowID)

	wf := &Workflow{ID: workflowID}
	index := make(map[string]int)
	var edges []Edge
	type priority struct {
		name  string
		value int
		line  int
	}
	var priorities []priority

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch strings.ToUpper(fields[0]) {
		case "JOB":
			if len(fields) < 2 {
				logger.Warn("Skipping malformed JOB line.", "line", lineNo)
				continue
			}
			name := fields[1]
			if _, err := jobid.New(workflowID, name); err != nil {
				logger.Warn("Skipping JOB line with invalid name.", "line", lineNo, "error", err)
				continue
			}
			if _, dup := index[name]; dup {
				logger.Warn("Skipping duplicate JOB declaration.", "line", lineNo, "job", name)
				continue
			}
			d := Decl{Name: name}
			if len(fields) > 2 {
				d.Submit = fields[2]
			}
			index[name] = len(wf.Jobs)
			wf.Jobs = append(wf.Jobs, d)

		case "PARENT":
			parents, children, ok := splitParentLine(fields[1:])
			if !ok {
				logger.Warn("Skipping malformed PARENT line.", "line", lineNo)
				continue
			}
			for _, p := range parents {
				for _, c := range children {
					edges = append(edges, Edge{Parent: p, Child: c})
				}
			}

		case "PRIORITY":
			if len(fields) != 3 {
				logger.Warn("Skipping malformed PRIORITY line.", "line", lineNo)
				continue
			}
			v, err := strconv.Atoi(fields[2])
			if err != nil {
				logger.Warn("Skipping PRIORITY line with a non-integer value.", "line", lineNo, "value", fields[2])
				continue
			}
			priorities = append(priorities, priority{fields[1], v, lineNo})

		default:
			// SCRIPT, VARS, RETRY and friends do not affect planning.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dependency file: %w", err)
	}

	seen := make(map[Edge]bool)
	for _, e := range edges {
		_, hasParent := index[e.Parent]
		_, hasChild := index[e.Child]
		if !hasParent || !hasChild {
			logger.Warn("Skipping edge to undeclared job.", "parent", e.Parent, "child", e.Child)
			continue
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		wf.Edges = append(wf.Edges, e)
	}

	for _, p := range priorities {
		i, ok := index[p.name]
		if !ok {
			logger.Warn("Skipping PRIORITY for undeclared job.", "line", p.line, "job", p.name)
			continue
		}
		wf.Jobs[i].Priority = p.value
	}

	logger.Debug("Dependency file parsed.", "jobs", len(wf.Jobs), "edges", len(wf.Edges))
	return wf, nil
}

// splitParentLine splits "a b CHILD c d" into its two name lists.
func splitParentLine(fields []string) (parents, children []string, ok bool) {
	for i, f := range fields {
		if f == "CHILD" {
			parents, children = fields[:i], fields[i+1:]
			return parents, children, len(parents) > 0 && len(children) > 0
		}
	}
	return nil, nil, false
}

// FindDAG locates the dependency file of a workflow folder. When there are
// several, the first in sorted order is used.
func FindDAG(ctx context.Context, folder string) (string, error) {
	files, err := fsutil.FindFilesByExtension(folder, Extension)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: folder %s does not exist", ErrMissingGraphFile, folder)
		}
		return "", fmt.Errorf("failed to search %s: %w", folder, err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w in %s", ErrMissingGraphFile, folder)
	}
	if len(files) > 1 {
		ctxlog.FromContext(ctx).Warn("Multiple dependency files found, using the first.",
			"folder", folder, "using", files[0], "count", len(files))
	}
	return files[0], nil
}

// LoadFolder finds and parses the dependency file of a workflow folder.
func LoadFolder(ctx context.Context, folder, workflowID string) (*Workflow, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", folder, err)
	}
	path, err := FindDAG(ctx, abs)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	wf, err := Parse(ctx, f, workflowID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	wf.Path = abs
	return wf, nil
}

// Builder receives a parsed workflow.
type Builder interface {
	AddWorkflow(ctx context.Context, wf topologystore.Workflow) error
	AddJob(ctx context.Context, j *job.Job) error
	AddDependency(ctx context.Context, parent, child jobid.ID) error
}

// AddTo registers the workflow, its jobs and its edges with b. Jobs take the
// workflow's preference and weight.
func (w *Workflow) AddTo(ctx context.Context, b Builder, pref job.Preference, weight float64) error {
	err := b.AddWorkflow(ctx, topologystore.Workflow{ID: w.ID, Path: w.Path, Preference: pref, Weight: weight})
	if err != nil {
		return err
	}
	for _, d := range w.Jobs {
		j, err := job.New(w.ID, w.Path, d.Name, pref)
		if err != nil {
			return err
		}
		j.Weight = weight
		j.Priority = d.Priority
		if err := b.AddJob(ctx, j); err != nil {
			return err
		}
	}
	for _, e := range w.Edges {
		parent, err := jobid.New(w.ID, e.Parent)
		if err != nil {
			return err
		}
		child, err := jobid.New(w.ID, e.Child)
		if err != nil {
			return err
		}
		if err := b.AddDependency(ctx, parent, child); err != nil {
			return err
		}
	}
	return nil
}
