// Package commands contains the Cobra commands of clagatectl.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/clagate/internal/config"
)

// NewRootCmd constructs the clagatectl root command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("CLAGATE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:   "clagatectl",
		Short: "Administer the clagate contributor license agreement gate",
		Long: "clagatectl manages the clagate database and the GitHub webhooks of guarded repositories.\n" +
			"It reads the same environment as the server:\n\n" + config.Usage(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of clagatectl",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "clagatectl version %s\n", version)
		},
	})

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newUserCommand())
	cmd.AddCommand(newAgreementCommand())
	cmd.AddCommand(newHookCommand())
	cmd.AddCommand(newSignCommand())
	cmd.AddCommand(newRecheckCommand())
	cmd.AddCommand(newReposCommand())

	return cmd
}
