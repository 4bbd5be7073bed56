package commands

import "github.com/spf13/cobra"

// NewRootCommand returns the check command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	root := NewCheckCommand()

	root.AddCommand(NewDiffCommand())
	root.AddCommand(NewHistoryCommand())
	root.AddCommand(NewMCPCommand())
	root.AddCommand(NewVersionCommand())

	return root
}
