package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// CheckSummary counts what happened to a batch of commits.
type CheckSummary struct {
	Commits  int // commits in the input, malformed ones included
	Reported int
	Failed   int // evaluation or status call failed
	Skipped  int // malformed
}

// Add merges other into s.
func (s *CheckSummary) Add(other CheckSummary) {
	s.Commits += other.Commits
	s.Reported += other.Reported
	s.Failed += other.Failed
	s.Skipped += other.Skipped
}

// CommitChecker runs resolve, evaluate and report for a batch of commits.
// Push deliveries, pull request deliveries and post-signature rechecks all go
// through it so that they share one contract.
type CommitChecker struct {
	evaluator *ComplianceEvaluator
	reporter  *StatusReporter
	logger    *slog.Logger
	pool      *ants.Pool // nil: statuses are written sequentially
}

// NewCommitChecker creates a checker. With concurrency > 1 status calls fan
// out through a shared pool of that size; call Close to release it.
func NewCommitChecker(
	evaluator *ComplianceEvaluator,
	reporter *StatusReporter,
	logger *slog.Logger,
	concurrency int,
) (*CommitChecker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &CommitChecker{evaluator: evaluator, reporter: reporter, logger: logger}

	if concurrency > 1 {
		pool, err := ants.NewPool(concurrency)
		if err != nil {
			return nil, fmt.Errorf("create status pool: %w", err)
		}
		c.pool = pool
	}

	return c, nil
}

// Close releases the status pool.
func (c *CommitChecker) Close() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// CheckCommits evaluates commits against agreement and reports one status per
// evaluable commit, in order. Failures are logged and counted, never returned.
func (c *CommitChecker) CheckCommits(
	ctx context.Context,
	platform driven.PlatformClient,
	agreement *model.Agreement,
	resolved []model.ResolvedCommit,
	total int,
) CheckSummary {
	repo := agreement.Repository()
	summary := CheckSummary{Commits: total, Skipped: total - len(resolved)}

	evaluation := c.evaluator.EvaluateAgreement(ctx, platform, agreement, resolved)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			summary.Failed++
			return
		}
		summary.Reported++
	}

	for _, v := range evaluation.Commits {
		if v.Err != nil {
			c.logger.Error("commit evaluation failed", "repo", repo.FullName(), "sha", v.SHA, "error", v.Err)
			record(v.Err)
			continue
		}

		report := func() {
			err := c.reporter.Report(ctx, platform, repo, v.SHA, v.Verdict)
			if err != nil {
				c.logger.Error("status report failed", "repo", repo.FullName(), "sha", v.SHA, "error", err)
			} else {
				c.logger.Info("status reported", "repo", repo.FullName(), "sha", v.SHA, "state", v.Verdict)
			}
			record(err)
		}

		if c.pool == nil {
			report()
			continue
		}

		wg.Add(1)
		if err := c.pool.Submit(func() {
			defer wg.Done()
			report()
		}); err != nil {
			wg.Done()
			report()
		}
	}

	wg.Wait()
	return summary
}

// CheckPullRequest evaluates and reports every commit of one pull request.
func (c *CommitChecker) CheckPullRequest(
	ctx context.Context,
	platform driven.PlatformClient,
	agreement *model.Agreement,
	number int,
) (CheckSummary, error) {
	repo := agreement.Repository()

	commits, err := platform.ListPullRequestCommits(ctx, repo, number)
	if err != nil {
		return CheckSummary{}, fmt.Errorf("list commits of %s#%d: %w", repo.FullName(), number, err)
	}

	resolved := ResolvePullCommits(c.logger, repo, number, commits)
	return c.CheckCommits(ctx, platform, agreement, resolved, len(commits)), nil
}

// CheckOpenPullRequests re-evaluates every open pull request. A failing pull
// request is logged and does not stop the others.
func (c *CommitChecker) CheckOpenPullRequests(
	ctx context.Context,
	platform driven.PlatformClient,
	agreement *model.Agreement,
) (CheckSummary, error) {
	repo := agreement.Repository()

	prs, err := platform.ListOpenPullRequests(ctx, repo)
	if err != nil {
		return CheckSummary{}, fmt.Errorf("list open pull requests of %s: %w", repo.FullName(), err)
	}

	var total CheckSummary
	for _, pr := range prs {
		summary, err := c.CheckPullRequest(ctx, platform, agreement, pr.Number)
		if err != nil {
			c.logger.Error("pull request recheck failed", "repo", repo.FullName(), "pr", pr.Number, "error", err)
			continue
		}
		total.Add(summary)
	}

	return total, nil
}
