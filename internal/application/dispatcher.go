package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// pullRequestActions are the pull_request actions that change a pull
// request's commits and therefore need a fresh evaluation.
var pullRequestActions = map[string]bool{
	"opened":      true,
	"reopened":    true,
	"synchronize": true,
}

// ClientSource hands out a PlatformClient acting as a given user.
type ClientSource interface {
	ForUser(ctx context.Context, userID int64) (driven.PlatformClient, error)
}

// WebhookDispatcher routes decoded deliveries. Push and pull_request events
// on repositories with an agreement are checked; everything else is a no-op.
type WebhookDispatcher struct {
	store   driven.ComplianceStore
	clients ClientSource
	checker *CommitChecker
	logger  *slog.Logger
}

// NewWebhookDispatcher creates a dispatcher.
func NewWebhookDispatcher(
	store driven.ComplianceStore,
	clients ClientSource,
	checker *CommitChecker,
	logger *slog.Logger,
) *WebhookDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookDispatcher{store: store, clients: clients, checker: checker, logger: logger}
}

// Dispatch handles one delivery. The returned error describes a delivery
// that could not be processed at all; per-commit failures are only logged.
// Callers answer the webhook with 200 either way.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event model.Event) (CheckSummary, error) {
	logger := d.logger.With("delivery", event.DeliveryID, "event", event.Kind)

	switch {
	case event.Kind == model.EventPush && event.Push != nil:
		return d.dispatchPush(ctx, logger, *event.Push)
	case event.Kind == model.EventPullRequest && event.PullRequest != nil:
		return d.dispatchPullRequest(ctx, logger, *event.PullRequest)
	default:
		logger.Debug("ignoring event")
		return CheckSummary{}, nil
	}
}

func (d *WebhookDispatcher) dispatchPush(ctx context.Context, logger *slog.Logger, push model.PushEvent) (CheckSummary, error) {
	agreement, platform, err := d.prepare(ctx, logger, push.Repository)
	if err != nil || agreement == nil {
		return CheckSummary{}, err
	}

	resolved := ResolvePushCommits(logger, push)
	summary := d.checker.CheckCommits(ctx, platform, agreement, resolved, len(push.Commits))

	logger.Info("push checked",
		"repo", push.Repository.FullName(),
		"commits", summary.Commits,
		"reported", summary.Reported,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func (d *WebhookDispatcher) dispatchPullRequest(ctx context.Context, logger *slog.Logger, pr model.PullRequestEvent) (CheckSummary, error) {
	if !pullRequestActions[pr.Action] {
		logger.Debug("ignoring pull request action", "action", pr.Action)
		return CheckSummary{}, nil
	}

	agreement, platform, err := d.prepare(ctx, logger, pr.Repository)
	if err != nil || agreement == nil {
		return CheckSummary{}, err
	}

	summary, err := d.checker.CheckPullRequest(ctx, platform, agreement, pr.Number)
	if err != nil {
		return CheckSummary{}, err
	}

	logger.Info("pull request checked",
		"repo", pr.Repository.FullName(),
		"pr", pr.Number,
		"reported", summary.Reported,
		"failed", summary.Failed,
	)
	return summary, nil
}

// prepare loads the agreement and a client acting as its owner. It returns a
// nil agreement, and makes no GitHub calls, when the repository has none.
func (d *WebhookDispatcher) prepare(
	ctx context.Context,
	logger *slog.Logger,
	repo model.Repository,
) (*model.Agreement, driven.PlatformClient, error) {
	agreement, err := d.store.FindAgreement(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("find agreement for %s: %w", repo.FullName(), err)
	}
	if agreement == nil {
		logger.Debug("no agreement, nothing to enforce", "repo", repo.FullName())
		return nil, nil, nil
	}

	platform, err := d.clients.ForUser(ctx, agreement.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("client for %s: %w", repo.FullName(), err)
	}
	return agreement, platform, nil
}
