// Package cli is responsible for parsing command-line arguments and flags,
// validating them, and turning them into an app.Config. It builds the cobra
// command tree and maps failures to process exit codes.
package cli
