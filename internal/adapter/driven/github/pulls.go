package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// ListOpenPullRequests retrieves open pull requests for the repository.
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) ListOpenPullRequests(ctx context.Context, repo model.Repository) ([]model.PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var all []model.PullRequest

	for {
		prs, resp, err := c.listing.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("listing pull requests for %s (page %d)", repo.FullName(), opts.Page), err)
		}

		c.logRateLimit(resp, repo.FullName()+"/pulls", opts.Page, len(prs))

		for _, pr := range prs {
			all = append(all, mapPullRequest(pr))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if all == nil {
		all = []model.PullRequest{}
	}
	return all, nil
}

// ListPullRequestCommits retrieves the commits of one pull request, oldest first.
func (c *Client) ListPullRequestCommits(ctx context.Context, repo model.Repository, number int) ([]model.Commit, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var all []model.Commit

	for {
		commits, resp, err := c.listing.PullRequests.ListCommits(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("listing commits for %s#%d (page %d)", repo.FullName(), number, opts.Page), err)
		}

		c.logRateLimit(resp, repo.FullName()+"/pull-commits", opts.Page, len(commits))

		for _, rc := range commits {
			all = append(all, mapRepositoryCommit(rc))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// mapPullRequest converts a go-github PullRequest to a domain model PullRequest.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapPullRequest(pr *gh.PullRequest) model.PullRequest {
	return model.PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Author:  pr.GetUser().GetLogin(),
		HeadSHA: pr.GetHead().GetSHA(),
		URL:     pr.GetHTMLURL(),
	}
}

// mapRepositoryCommit builds identities from the git metadata (name, email)
// and the linked GitHub account (login), when GitHub could link one.
func mapRepositoryCommit(rc *gh.RepositoryCommit) model.Commit {
	return model.Commit{
		SHA:       rc.GetSHA(),
		Author:    commitIdentity(rc.GetAuthor(), rc.GetCommit().GetAuthor()),
		Committer: commitIdentity(rc.GetCommitter(), rc.GetCommit().GetCommitter()),
	}
}

func commitIdentity(account *gh.User, git *gh.CommitAuthor) *model.Identity {
	if account == nil && git == nil {
		return nil
	}
	id := model.Identity{
		Login: account.GetLogin(),
		Name:  git.GetName(),
		Email: git.GetEmail(),
	}
	if id.IsEmpty() {
		return nil
	}
	return &id
}
