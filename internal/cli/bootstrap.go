// Package cli provides CLI commands for the mender application.
package cli

import "context"

// NewContext creates the base context for CLI command execution.
// Commands should use this instead of context.Background() directly so
// request-scoped values can be added in one place later.
func NewContext() context.Context {
	return context.Background()
}
