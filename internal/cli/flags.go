package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/wfplan/internal/app"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// workflowList collects repeatable "folder,preference[,weight]" flags.
type workflowList []app.WorkflowSource

func (w *workflowList) String() string {
	parts := make([]string, len(*w))
	for i, src := range *w {
		parts[i] = src.Folder + "," + src.Preference
	}
	return strings.Join(parts, " ")
}

func (w *workflowList) Set(v string) error {
	src, err := parseWorkflow(v)
	if err != nil {
		return err
	}
	*w = append(*w, src)
	return nil
}

// parseWorkflow splits from the right so that folders may contain commas.
func parseWorkflow(v string) (app.WorkflowSource, error) {
	parts := strings.Split(v, ",")
	src := app.WorkflowSource{Weight: app.DefaultWeight}
	switch {
	case len(parts) >= 3:
		if weight, err := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64); err == nil {
			src.Weight = weight
			src.Preference = strings.TrimSpace(parts[len(parts)-2])
			src.Folder = strings.Join(parts[:len(parts)-2], ",")
			break
		}
		fallthrough
	case len(parts) == 2:
		src.Preference = strings.TrimSpace(parts[len(parts)-1])
		src.Folder = strings.Join(parts[:len(parts)-1], ",")
	default:
		return src, fmt.Errorf("workflow %q must look like folder,preference[,weight]", v)
	}
	if src.Folder == "" {
		return src, fmt.Errorf("workflow %q has an empty folder", v)
	}
	return src, nil
}

// optionalBool is a bool flag that remembers whether it was given.
type optionalBool struct {
	value *bool
}

func (b *optionalBool) String() string {
	if b.value == nil {
		return ""
	}
	return strconv.FormatBool(*b.value)
}

func (b *optionalBool) Set(v string) error {
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	b.value = &parsed
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }

// optionalFloat is a float flag that remembers whether it was given.
type optionalFloat struct {
	value *float64
}

func (f *optionalFloat) String() string {
	if f.value == nil {
		return ""
	}
	return strconv.FormatFloat(*f.value, 'g', -1, 64)
}

func (f *optionalFloat) Set(v string) error {
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	f.value = &parsed
	return nil
}
