package resources

import (
	"slices"
	"strconv"
	"strings"
)

// SplitSlot parses a `slot<N>@<host>` id.
func SplitSlot(id string) (slot int, host string, ok bool) {
	name, host, found := strings.Cut(id, "@")
	if !found || host == "" {
		return 0, "", false
	}
	digits, hasPrefix := strings.CutPrefix(name, "slot")
	if !hasPrefix {
		return 0, "", false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, "", false
	}
	return n, host, true
}

// Group is the set of slots of one host.
type Group struct {
	Host  string
	Slots []int
}

// GroupByHost groups slot ids by host, in order of first appearance. Slots
// are sorted and deduplicated. Ids that are not slots are returned apart.
func GroupByHost(ids []string) (groups []Group, others []string) {
	index := make(map[string]int)
	for _, id := range ids {
		slot, host, ok := SplitSlot(id)
		if !ok {
			others = append(others, id)
			continue
		}
		i, exists := index[host]
		if !exists {
			i = len(groups)
			index[host] = i
			groups = append(groups, Group{Host: host})
		}
		groups[i].Slots = append(groups[i].Slots, slot)
	}
	for i := range groups {
		slices.Sort(groups[i].Slots)
		groups[i].Slots = slices.Compact(groups[i].Slots)
	}
	return groups, others
}

// Compress renders ids compactly, e.g. "alpha@1-3,5 bravo@2 master".
func Compress(ids []string) string {
	groups, others := GroupByHost(ids)
	parts := make([]string, 0, len(groups)+len(others))
	for _, g := range groups {
		parts = append(parts, g.Host+"@"+ranges(g.Slots))
	}
	parts = append(parts, others...)
	return strings.Join(parts, " ")
}

func ranges(slots []int) string {
	var out []string
	for i := 0; i < len(slots); {
		j := i
		for j+1 < len(slots) && slots[j+1] == slots[j]+1 {
			j++
		}
		if i == j {
			out = append(out, strconv.Itoa(slots[i]))
		} else {
			out = append(out, strconv.Itoa(slots[i])+"-"+strconv.Itoa(slots[j]))
		}
		i = j + 1
	}
	return strings.Join(out, ",")
}
