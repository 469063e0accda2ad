// Package inmemorytopology provides the default, map-backed implementation of
// topologystore.Store. Every map is paired with a slice that records insertion
// order so that iteration is deterministic.
package inmemorytopology
