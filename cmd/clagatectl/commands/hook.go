package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage the webhook of a guarded repository",
	}
	cmd.AddCommand(newHookEnsureCommand())
	cmd.AddCommand(newHookDeleteCommand())
	return cmd
}

func newHookEnsureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure OWNER/REPO",
		Short: "Register the webhook unless an identical one exists",
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

			agreement, err := a.AgreementService.Find(cmd.Context(), repo)
			if err != nil {
				return err
			}
			hookID, err := a.AgreementService.EnsureHook(cmd.Context(), agreement)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "hook %d on %s\n", hookID, repo.FullName())
			return nil
		},
	}
}

func newHookDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete OWNER/REPO",
		Short: "Delete the recorded webhook; the agreement is kept",
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

			agreement, err := a.AgreementService.Find(cmd.Context(), repo)
			if err != nil {
				return err
			}
			if err := a.AgreementService.DeleteHook(cmd.Context(), agreement); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "hook removed from %s\n", repo.FullName())
			return nil
		},
	}
}
