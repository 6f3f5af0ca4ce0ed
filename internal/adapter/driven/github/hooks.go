package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// hookJSON is the wire form of a repository webhook. Config stays a free-form
// object so that it round-trips exactly as GitHub returns it.
type hookJSON struct {
	ID     int64          `json:"id,omitempty"`
	Name   string         `json:"name,omitempty"`
	Config map[string]any `json:"config,omitempty"`
	Events []string       `json:"events,omitempty"`
	Active *bool          `json:"active,omitempty"`
}

// CreateHook calls POST /repos/{owner}/{repo}/hooks.
func (c *Client) CreateHook(ctx context.Context, repo model.Repository, hook model.Hook) (model.Hook, error) {
	body := toHookJSON(hook)

	req, err := c.gh.NewRequest(http.MethodPost, repoPath(repo.Owner, repo.Name, "hooks"), body)
	if err != nil {
		return model.Hook{}, fmt.Errorf("building create hook request for %s: %w", repo.FullName(), err)
	}

	var created hookJSON
	resp, err := c.gh.Do(ctx, req, &created)
	if err != nil {
		return model.Hook{}, classify("creating hook on "+repo.FullName(), err)
	}

	c.logRateLimit(resp, repo.FullName()+"/hooks", 0, 1)
	return mapHook(created), nil
}

// ListHooks calls GET /repos/{owner}/{repo}/hooks, following pagination.
func (c *Client) ListHooks(ctx context.Context, repo model.Repository) ([]model.Hook, error) {
	var hooks []model.Hook
	page := 1

	for {
		u := repoPath(repo.Owner, repo.Name, "hooks") + "?per_page=100&page=" + strconv.Itoa(page)
		req, err := c.gh.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("building list hooks request for %s: %w", repo.FullName(), err)
		}

		var batch []hookJSON
		resp, err := c.gh.Do(ctx, req, &batch)
		if err != nil {
			return nil, classify(fmt.Sprintf("listing hooks for %s (page %d)", repo.FullName(), page), err)
		}

		c.logRateLimit(resp, repo.FullName()+"/hooks", page, len(batch))

		for _, h := range batch {
			hooks = append(hooks, mapHook(h))
		}

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	if hooks == nil {
		hooks = []model.Hook{}
	}
	return hooks, nil
}

// EditHook calls PATCH /repos/{owner}/{repo}/hooks/{id}.
func (c *Client) EditHook(ctx context.Context, repo model.Repository, id int64, hook model.Hook) (model.Hook, error) {
	u := repoPath(repo.Owner, repo.Name, "hooks", strconv.FormatInt(id, 10))
	req, err := c.gh.NewRequest(http.MethodPatch, u, toHookJSON(hook))
	if err != nil {
		return model.Hook{}, fmt.Errorf("building edit hook request for %s: %w", repo.FullName(), err)
	}

	var edited hookJSON
	resp, err := c.gh.Do(ctx, req, &edited)
	if err != nil {
		return model.Hook{}, classify(fmt.Sprintf("editing hook %d on %s", id, repo.FullName()), err)
	}

	c.logRateLimit(resp, repo.FullName()+"/hooks", 0, 1)
	return mapHook(edited), nil
}

// DeleteHook calls DELETE /repos/{owner}/{repo}/hooks/{id}.
func (c *Client) DeleteHook(ctx context.Context, repo model.Repository, id int64) error {
	resp, err := c.gh.Repositories.DeleteHook(ctx, repo.Owner, repo.Name, id)
	if err != nil {
		return classify(fmt.Sprintf("deleting hook %d on %s", id, repo.FullName()), err)
	}

	c.logRateLimit(resp, repo.FullName()+"/hooks", 0, 1)
	return nil
}

func toHookJSON(hook model.Hook) hookJSON {
	return hookJSON{
		Name:   hook.Name,
		Config: hook.Config,
		Events: hook.Events,
		Active: gh.Ptr(hook.Active),
	}
}

func mapHook(h hookJSON) model.Hook {
	active := true
	if h.Active != nil {
		active = *h.Active
	}
	return model.Hook{
		ID:     h.ID,
		Name:   h.Name,
		Config: h.Config,
		Events: h.Events,
		Active: active,
	}
}
