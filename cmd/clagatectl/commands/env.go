package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/clagate/internal/app"
	"github.com/ericfisherdev/clagate/internal/application"
	"github.com/ericfisherdev/clagate/internal/config"
	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// openApp loads the configuration and wires the application. Logs go to the
// command's stderr so that stdout carries only command output.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return app.New(cmd.Context(), cfg, logger)
}

// parseRepository splits "owner/repo".
func parseRepository(arg string) (model.Repository, error) {
	owner, name, ok := strings.Cut(arg, "/")
	repo := model.Repository{Owner: owner, Name: name}
	if !ok || repo.IsZero() || strings.Contains(name, "/") {
		return model.Repository{}, fmt.Errorf("%q is not owner/repo", arg)
	}
	return repo, nil
}

// lookupUser resolves a login given with --as.
func lookupUser(cmd *cobra.Command, a *app.App, login string) (*model.User, error) {
	if login == "" {
		return nil, fmt.Errorf("--as is required")
	}
	user, err := a.Users.GetByLogin(cmd.Context(), login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("unknown user %q, add it with 'clagatectl user add'", login)
	}
	return user, nil
}

func printSummary(cmd *cobra.Command, verb string, repo model.Repository, s application.CheckSummary) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d commits, %d reported, %d failed, %d skipped\n",
		verb, repo.FullName(), s.Commits, s.Reported, s.Failed, s.Skipped)
}
