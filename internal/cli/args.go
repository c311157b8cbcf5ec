package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// OptionalPath accepts zero or one positional argument named name.
// Returns a helpful error message with usage and an example if more are given.
func OptionalPath(name, example string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return fmt.Errorf(`accepts at most 1 arg(s), received %d

Usage: %s

Only one <%s> can be given per run. Example:
  %s %s`, len(args), cmd.UseLine(), name, cmd.CommandPath(), example)
		}
		return nil
	}
}
