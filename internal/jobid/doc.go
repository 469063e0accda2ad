/*
Package jobid provides a structured representation for job identifiers in the
combined multi-workflow graph.

The canonical format is `workflow:name`, e.g. `workflow_1:mProject_ID0000012`.
Job names are only unique inside their workflow; prefixing with the workflow
identifier makes them unique across every graph loaded into one planning run.
*/
package jobid
