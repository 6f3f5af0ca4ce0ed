package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage known GitHub accounts",
	}
	cmd.AddCommand(newUserAddCommand())
	return cmd
}

// userTokenEnv carries the OAuth token for 'user add' unless --token-stdin is given.
const userTokenEnv = "CLAGATE_USER_TOKEN"

func newUserAddCommand() *cobra.Command {
	var (
		identity   model.OAuthIdentity
		tokenStdin bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or refresh a user and its OAuth token",
		Long: "Records a GitHub account the way a completed OAuth sign-in would.\n" +
			"The OAuth token is read from " + userTokenEnv + ", or from the first line of stdin\n" +
			"with --token-stdin, and encrypted with CLAGATE_SECRET_KEY.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := readToken(cmd, tokenStdin)
			if err != nil {
				return err
			}
			identity.Token = token

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.Users.UpsertFromOAuth(cmd.Context(), identity)
			if err != nil {
				return err
			}
			a.Clients.Forget(user.ID)

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user %s (id %d, uid %s)\n", user.Login, user.ID, user.UID)
			return nil
		},
	}

	cmd.Flags().StringVar(&identity.UID, "uid", "", "GitHub numeric account id")
	cmd.Flags().StringVar(&identity.Login, "login", "", "GitHub login")
	cmd.Flags().StringVar(&identity.Name, "name", "", "display name")
	cmd.Flags().StringVar(&identity.Email, "email", "", "primary email")
	cmd.Flags().BoolVar(&tokenStdin, "token-stdin", false, "read the OAuth token (repo and admin:repo_hook scopes) from stdin")
	_ = cmd.MarkFlagRequired("uid")
	_ = cmd.MarkFlagRequired("login")

	return cmd
}

// readToken takes the token from stdin or the environment, never from argv.
func readToken(cmd *cobra.Command, fromStdin bool) (string, error) {
	var token string
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read token from stdin: %w", err)
		}
		token = line
	} else {
		token = os.Getenv(userTokenEnv)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("no OAuth token: set " + userTokenEnv + " or pass --token-stdin")
	}
	return token, nil
}
