package job

import (
	"fmt"
	"strings"
)

// Preference is the scheduling preference class of a workflow. The classes
// form a strict total order: Performance > Balanced > Energy.
type Preference int

const (
	Energy Preference = iota
	Balanced
	Performance
)

// Preferences lists every class from most to least urgent.
var Preferences = []Preference{Performance, Balanced, Energy}

// ParsePreference converts the textual form used on the command line and in
// config files into a Preference.
func ParsePreference(s string) (Preference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "performance":
		return Performance, nil
	case "balanced":
		return Balanced, nil
	case "energy":
		return Energy, nil
	default:
		return Balanced, fmt.Errorf("unknown preference %q: must be 'performance', 'balanced' or 'energy'", s)
	}
}

// Rank returns the urgency of the class; a larger value is more urgent.
func (p Preference) Rank() int {
	return int(p)
}

// Outranks reports whether p is strictly more urgent than other.
func (p Preference) Outranks(other Preference) bool {
	return p.Rank() > other.Rank()
}

func (p Preference) String() string {
	switch p {
	case Performance:
		return "performance"
	case Balanced:
		return "balanced"
	case Energy:
		return "energy"
	default:
		return fmt.Sprintf("preference(%d)", int(p))
	}
}
