// Package allocator implements the resource allocation daemon: a registry of
// resources with at most one holder job each, an HTTP API to allocate and
// release them, periodic persistence to bolt, Prometheus metrics, and a
// client for the API.
package allocator
