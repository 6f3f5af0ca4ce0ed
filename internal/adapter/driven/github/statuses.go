package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// statusJSON is the body of POST /repos/{owner}/{repo}/statuses/{sha}.
// Field order matches GitHub's documentation.
type statusJSON struct {
	State       string `json:"state"`
	TargetURL   string `json:"target_url"`
	Description string `json:"description"`
	Context     string `json:"context"`
}

// CreateStatus writes one commit status. The body is sent exactly as built
// here, so a status is either fully written or not at all.
func (c *Client) CreateStatus(ctx context.Context, repo model.Repository, sha string, status model.CommitStatus) error {
	body := statusJSON{
		State:       string(status.State),
		TargetURL:   status.TargetURL,
		Description: status.Description,
		Context:     status.Context,
	}

	req, err := c.gh.NewRequest(http.MethodPost, repoPath(repo.Owner, repo.Name, "statuses", url.PathEscape(sha)), body)
	if err != nil {
		return fmt.Errorf("building status request for %s@%s: %w", repo.FullName(), sha, err)
	}

	resp, err := c.gh.Do(ctx, req, nil)
	if err != nil {
		return classify(fmt.Sprintf("creating status for %s@%s", repo.FullName(), sha), err)
	}

	c.logRateLimit(resp, repo.FullName()+"/statuses", 0, 1)
	return nil
}
