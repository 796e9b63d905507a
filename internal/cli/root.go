package cli

import "github.com/spf13/cobra"

// NewRootCommand assembles the backoffice command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "POS back-office API and maintenance jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newSeedPlansCommand(),
		newExpireCommand(),
	)
	return root
}
