// Package preflight provides readiness checks for the filesystem paths and
// external binaries a run depends on.
//
// The run command calls RunAll before taking the marker. If any check fails
// the run is refused, since a doomed run would still clear the output root.
// The deps command displays the same results.
package preflight
