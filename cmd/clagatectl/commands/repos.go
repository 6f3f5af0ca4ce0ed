package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReposCommand() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List repositories the user administers and whether they are guarded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := lookupUser(cmd, a, as)
			if err != nil {
				return err
			}

			platform, err := a.Clients.ForUser(cmd.Context(), user.ID)
			if err != nil {
				return err
			}
			repos, err := platform.ListAdminRepositories(cmd.Context())
			if err != nil {
				return err
			}

			for _, repo := range repos {
				agreement, err := a.Agreements.FindByRepository(cmd.Context(), repo.Owner, repo.Name)
				if err != nil {
					return err
				}
				mark := " "
				if agreement != nil {
					mark = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, repo.FullName())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "login whose token lists the repositories")

	return cmd
}
