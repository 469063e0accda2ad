// Package report writes a finished schedule to disk as a CSV file and a
// plain-text summary next to it.
package report
