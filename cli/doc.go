// Package cli implements the jig command line.
//
//	jig run --config jig.yml [--workitem item.json] [--output json|yaml]
//	jig version [--output json|yaml]
//
// run loads a RunConfig, starts the HTTP participant as a component, runs
// the configured process through an in-process engine and prints the work
// item from the print_fields step. Failures are written to stderr as a JSON
// error response and exit with status 1.
package cli
