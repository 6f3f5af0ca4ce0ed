package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// repoJSON is the subset of a repository listing entry the gate reads.
type repoJSON struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Permissions struct {
		Admin bool `json:"admin"`
	} `json:"permissions"`
}

type orgJSON struct {
	Login string `json:"login"`
}

// ListAdminRepositories returns the authenticated user's repositories sorted
// by name, followed by the repositories of each of the user's organisations
// on which the user has admin permission.
func (c *Client) ListAdminRepositories(ctx context.Context) ([]model.Repository, error) {
	own, err := listPaged[repoJSON](ctx, c, "user/repos")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(own, func(i, j int) bool { return own[i].Name < own[j].Name })

	repos := make([]model.Repository, 0, len(own))
	for _, r := range own {
		repos = append(repos, model.Repository{Owner: r.Owner.Login, Name: r.Name})
	}

	orgs, err := listPaged[orgJSON](ctx, c, "user/orgs")
	if err != nil {
		return nil, err
	}

	for _, org := range orgs {
		orgRepos, err := listPaged[repoJSON](ctx, c, "orgs/"+url.PathEscape(org.Login)+"/repos")
		if err != nil {
			return nil, err
		}
		for _, r := range orgRepos {
			if r.Permissions.Admin {
				repos = append(repos, model.Repository{Owner: r.Owner.Login, Name: r.Name})
			}
		}
	}

	return repos, nil
}

// listPaged fetches every page of a list endpoint through the caching client.
func listPaged[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	page := 1

	for {
		req, err := c.listing.NewRequest(http.MethodGet, path+"?per_page=100&page="+strconv.Itoa(page), nil)
		if err != nil {
			return nil, fmt.Errorf("building request for %s: %w", path, err)
		}

		var batch []T
		resp, err := c.listing.Do(ctx, req, &batch)
		if err != nil {
			return nil, classify(fmt.Sprintf("listing %s (page %d)", path, page), err)
		}

		c.logRateLimit(resp, path, page, len(batch))
		all = append(all, batch...)

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return all, nil
}
