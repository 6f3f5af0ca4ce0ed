package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newAgreementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agreement",
		Aliases: []string{"agreements"},
		Short:   "Register and inspect repository agreements",
	}
	cmd.AddCommand(newAgreementRegisterCommand())
	cmd.AddCommand(newAgreementUpdateCommand())
	cmd.AddCommand(newAgreementShowCommand())
	return cmd
}

func newAgreementRegisterCommand() *cobra.Command {
	var (
		as       string
		textFile string
		fields   []string
	)

	cmd := &cobra.Command{
		Use:   "register OWNER/REPO",
		Short: "Create a repository's agreement and its webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := parseRepository(args[0])
			if err != nil {
				return err
			}
			text, err := readText(cmd, textFile)
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

			agreement, err := a.AgreementService.Register(cmd.Context(), *user, repo, text, fields)
			if agreement != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "agreement %d on %s (hook %d)\n",
					agreement.ID, repo.FullName(), agreement.HookID)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "login of the registering user; its token manages the webhook")
	cmd.Flags().StringVar(&textFile, "text-file", "", "markdown agreement text, - for stdin")
	cmd.Flags().StringSliceVar(&fields, "field", nil, "required signer field (repeatable)")
	_ = cmd.MarkFlagRequired("text-file")

	return cmd
}

func newAgreementUpdateCommand() *cobra.Command {
	var (
		textFile string
		fields   []string
	)

	cmd := &cobra.Command{
		Use:   "update OWNER/REPO",
		Short: "Replace an agreement's text and required fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := parseRepository(args[0])
			if err != nil {
				return err
			}
			text, err := readText(cmd, textFile)
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.AgreementService.Update(cmd.Context(), repo, text, fields); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "agreement on %s updated\n", repo.FullName())
			return nil
		},
	}

	cmd.Flags().StringVar(&textFile, "text-file", "", "markdown agreement text, - for stdin")
	cmd.Flags().StringSliceVar(&fields, "field", nil, "required signer field (repeatable)")
	_ = cmd.MarkFlagRequired("text-file")

	return cmd
}

func newAgreementShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show OWNER/REPO",
		Short: "Print an agreement and its signature count",
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
			signatures, err := a.Signatures.ListByAgreement(cmd.Context(), agreement.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "repository: %s\n", repo.FullName())
			_, _ = fmt.Fprintf(out, "id:         %d\n", agreement.ID)
			_, _ = fmt.Fprintf(out, "hook:       %d\n", agreement.HookID)
			_, _ = fmt.Fprintf(out, "fields:     %s\n", strings.Join(agreement.RequiredFields, ", "))
			_, _ = fmt.Fprintf(out, "signatures: %d\n", len(signatures))
			_, _ = fmt.Fprintf(out, "url:        %s/agreements/%s\n", a.Config.PublicURL, repo.FullName())
			return nil
		},
	}
}

func readText(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read agreement text: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("agreement text is empty")
	}
	return text, nil
}
