package application

import (
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// ResolveContributors returns the commit's distinct contributors: the author,
// followed by the committer when one is present and differs from the author.
// A commit without a sha or an author yields model.ErrMalformedCommit.
func ResolveContributors(c model.Commit) (model.ResolvedCommit, error) {
	if c.SHA == "" {
		return model.ResolvedCommit{}, fmt.Errorf("commit without sha: %w", model.ErrMalformedCommit)
	}
	if c.Author == nil || c.Author.IsEmpty() {
		return model.ResolvedCommit{}, fmt.Errorf("commit %s has no author: %w", c.SHA, model.ErrMalformedCommit)
	}

	contributors := []model.Identity{*c.Author}
	if c.Committer != nil && !c.Committer.IsEmpty() && !c.Committer.Same(*c.Author) {
		contributors = append(contributors, *c.Committer)
	}

	return model.ResolvedCommit{SHA: c.SHA, Contributors: contributors}, nil
}

// ResolvePushCommits resolves every commit of a push in payload order.
// Malformed commits are logged and left out.
func ResolvePushCommits(logger *slog.Logger, event model.PushEvent) []model.ResolvedCommit {
	return resolveAll(logger.With("delivery", event.DeliveryID, "repo", event.Repository.FullName()), event.Commits)
}

// ResolvePullCommits resolves a pull request's commit list with the same
// rules as a push.
func ResolvePullCommits(logger *slog.Logger, repo model.Repository, number int, commits []model.Commit) []model.ResolvedCommit {
	return resolveAll(logger.With("repo", repo.FullName(), "pr", number), commits)
}

func resolveAll(logger *slog.Logger, commits []model.Commit) []model.ResolvedCommit {
	resolved := make([]model.ResolvedCommit, 0, len(commits))
	for i, c := range commits {
		rc, err := ResolveContributors(c)
		if err != nil {
			logger.Warn("skipping malformed commit", "index", i, "sha", c.SHA, "error", err)
			continue
		}
		resolved = append(resolved, rc)
	}
	return resolved
}
