// Package app wires the checks into a run. It registers each check stage as
// a pipe, orders the stages by their declared dependencies and turns the
// outcome into a report, decoupled from any specific entrypoint like a CLI.
package app
