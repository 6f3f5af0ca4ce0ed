package github

import (
	"context"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// CheckCollaborator calls GET /repos/{owner}/{repo}/collaborators/{login}.
// 204 maps to Collaborator and 404 to NotCollaborator; any failure to get one
// of those answers is CheckFailed and is logged here.
func (c *Client) CheckCollaborator(ctx context.Context, repo model.Repository, login string) driven.CollaboratorStatus {
	isCollaborator, resp, err := c.gh.Repositories.IsCollaborator(ctx, repo.Owner, repo.Name, login)
	if err != nil {
		c.logger.Warn("collaborator check failed",
			"repo", repo.FullName(),
			"login", login,
			"error", classify("checking collaborator", err),
		)
		return driven.CheckFailed
	}

	c.logRateLimit(resp, repo.FullName()+"/collaborators", 0, 1)

	if isCollaborator {
		return driven.Collaborator
	}
	return driven.NotCollaborator
}
