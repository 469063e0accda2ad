package resources

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/job"
)

var (
	// ErrResourceListEmpty is returned when a list yields no resources.
	ErrResourceListEmpty = errors.New("resource list is empty")
	// ErrMissingResourceFile is returned when the list file does not exist.
	ErrMissingResourceFile = errors.New("resource file not found")
)

// Entry is one line of a resource list.
type Entry struct {
	ID        string `json:"id"`
	Processor string `json:"processor,omitempty"`
	// Job is the holder recorded by the allocation daemon, if any.
	Job string `json:"job,omitempty"`
}

// Spec holds the catalog attributes of a resource.
type Spec struct {
	MIPS      float64
	BasePower float64
	CPULoad   float64
}

// Load reads a resource list file.
func Load(ctx context.Context, path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingResourceFile, path)
		}
		return nil, fmt.Errorf("failed to open resource file %s: %w", path, err)
	}
	defer f.Close()

	entries, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse reads a resource list. Blank lines and `#` comments are skipped;
// malformed and duplicate lines are logged and skipped.
func Parse(ctx context.Context, r io.Reader) ([]Entry, error) {
	logger := ctxlog.FromContext(ctx)

	var entries []Entry
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) > 3 || parts[0] == "" {
			logger.Warn("Skipping malformed resource line.", "line", lineNo, "text", line)
			continue
		}
		e := Entry{ID: parts[0]}
		if len(parts) > 1 {
			e.Processor = parts[1]
		}
		if len(parts) > 2 && parts[2] != "None" {
			e.Job = parts[2]
		}
		if seen[e.ID] {
			logger.Warn("Skipping duplicate resource.", "line", lineNo, "resource", e.ID)
			continue
		}
		seen[e.ID] = true
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read resource list: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrResourceListEmpty
	}
	return entries, nil
}

// IDs returns the ids of the entries, in order.
func IDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

// Build turns entries into schedulable resources, taking attributes from the
// catalog by id. A `slot<N>@<host>` id without its own catalog entry uses the
// host's entry.
func Build(entries []Entry, catalog map[string]Spec) []*job.Resource {
	out := make([]*job.Resource, 0, len(entries))
	for _, e := range entries {
		spec, ok := catalog[e.ID]
		if !ok {
			if _, host, isSlot := SplitSlot(e.ID); isSlot {
				spec = catalog[host]
			}
		}
		out = append(out, &job.Resource{
			ID:        e.ID,
			Processor: e.Processor,
			MIPS:      spec.MIPS,
			BasePower: spec.BasePower,
			CPULoad:   spec.CPULoad,
		})
	}
	return out
}
