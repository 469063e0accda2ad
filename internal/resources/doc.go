// Package resources reads the resource list a plan is made against and
// merges it with the resource catalog from the configuration.
//
// The list holds one resource per line: `id`, `id,processor` or
// `id,processor,job`. Ids of the form `slot<N>@<host>` name execution slots
// on a host; they can be grouped by host and compressed to `host@1-3,5`.
package resources
