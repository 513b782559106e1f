// Package main hosts the plarchive CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the structured
// logger, and hands off to the internal packages: run performs a full archive
// pass, index regenerates the report from the catalog, verify re-checks every
// published sidecar, and the remaining commands inspect the catalog, external
// binaries, and configuration.
package main
