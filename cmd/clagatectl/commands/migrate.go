package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/clagate/internal/adapter/driven/sqlite"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			version, dirty, err := sqliteadapter.MigrationVersion(a.DB.Writer)
			if err != nil {
				return err
			}

			state := "clean"
			if dirty {
				state = "dirty"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (%s)\n", a.DB.Path(), version, state)
			return nil
		},
	}
}
