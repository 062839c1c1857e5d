package interfaces

import "context"

// CommandRunner executes host-local commands for the runtime-setup and
// build steps.
type CommandRunner interface {
	// LookPath resolves a binary on the host PATH
	LookPath(name string) (string, error)

	// Run executes the command in dir and returns its combined
	// stdout/stderr. A non-zero exit is returned as an error that
	// carries the output.
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}
