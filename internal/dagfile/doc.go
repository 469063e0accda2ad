// Package dagfile reads workflow dependency files.
//
// The format is line oriented:
//
//	JOB <name> <submit-file>
//	PARENT <name>... CHILD <name>...
//	PRIORITY <name> <int>
//
// Other keywords are ignored. Lines that cannot be read are logged with
// their line number and skipped, as are edges naming undeclared jobs.
package dagfile
