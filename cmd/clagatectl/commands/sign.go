package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSignCommand() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "sign OWNER/REPO",
		Short: "Record a signature and recheck the repository's open pull requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := parseRepository(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := lookupUser(cmd, a, as)
			if err != nil {
				return err
			}

			result, err := a.SignatureService.Sign(cmd.Context(), *user, repo)
			if err != nil {
				return err
			}
			if result.AlreadySigned {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s already signed %s\n", user.Login, repo.FullName())
				return nil
			}
			printSummary(cmd, user.Login+" signed", repo, result.Recheck)
			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "login of the signing user")

	return cmd
}

func newRecheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recheck OWNER/REPO",
		Short: "Re-evaluate and report every open pull request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := parseRepository(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.SignatureService.RecheckOpenPullRequests(cmd.Context(), repo)
			if err != nil {
				return err
			}
			printSummary(cmd, "rechecked", repo, s)
			return nil
		},
	}
}
