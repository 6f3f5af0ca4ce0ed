package driven

import (
	"context"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// CollaboratorStatus is the outcome of a repository collaborator check.
// CheckFailed covers transport errors and unexpected responses; callers decide
// how to treat it instead of receiving an error.
type CollaboratorStatus int

const (
	CheckFailed CollaboratorStatus = iota
	Collaborator
	NotCollaborator
)

// String returns a log-friendly name.
func (s CollaboratorStatus) String() string {
	switch s {
	case Collaborator:
		return "collaborator"
	case NotCollaborator:
		return "not_collaborator"
	default:
		return "check_failed"
	}
}

// PlatformClient defines the driven port for the GitHub REST API. A client is
// bound to one user's OAuth token. Errors other than collaborator checks are
// either *PlatformError (GitHub answered with a rejection) or *TransportError
// (no usable answer).
type PlatformClient interface {
	// CheckCollaborator reports whether login is a collaborator on repo.
	CheckCollaborator(ctx context.Context, repo model.Repository, login string) CollaboratorStatus

	// CreateHook registers a webhook. A duplicate registration fails with a
	// PlatformError whose Code is CodeHookExists.
	CreateHook(ctx context.Context, repo model.Repository, hook model.Hook) (model.Hook, error)
	ListHooks(ctx context.Context, repo model.Repository) ([]model.Hook, error)
	EditHook(ctx context.Context, repo model.Repository, id int64, hook model.Hook) (model.Hook, error)
	// DeleteHook removes a webhook. A missing hook fails with CodeNotFound.
	DeleteHook(ctx context.Context, repo model.Repository, id int64) error

	// CreateStatus writes one commit status for sha.
	CreateStatus(ctx context.Context, repo model.Repository, sha string, status model.CommitStatus) error

	ListOpenPullRequests(ctx context.Context, repo model.Repository) ([]model.PullRequest, error)
	ListPullRequestCommits(ctx context.Context, repo model.Repository, number int) ([]model.Commit, error)

	// ListAdminRepositories returns the user's own repositories sorted by name,
	// followed by organisation repositories the user administers.
	ListAdminRepositories(ctx context.Context) ([]model.Repository, error)
}
