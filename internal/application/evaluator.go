package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// Evaluation is the outcome of evaluating one batch of commits.
// Agreement is nil when the repository has none.
type Evaluation struct {
	Agreement *model.Agreement
	Commits   []model.CommitVerdict
}

// ComplianceEvaluator decides, per commit, whether every contributor has
// signed the repository's agreement or is exempt as a collaborator.
type ComplianceEvaluator struct {
	store  driven.ComplianceStore
	logger *slog.Logger
}

// NewComplianceEvaluator creates an evaluator reading from store.
func NewComplianceEvaluator(store driven.ComplianceStore, logger *slog.Logger) *ComplianceEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComplianceEvaluator{store: store, logger: logger}
}

// Evaluate looks up repo's agreement once and evaluates commits against it.
// Only the agreement lookup can fail the whole batch.
func (e *ComplianceEvaluator) Evaluate(
	ctx context.Context,
	platform driven.PlatformClient,
	repo model.Repository,
	commits []model.ResolvedCommit,
) (Evaluation, error) {
	agreement, err := e.store.FindAgreement(ctx, repo.Owner, repo.Name)
	if err != nil {
		return Evaluation{}, fmt.Errorf("find agreement for %s: %w", repo.FullName(), err)
	}
	return e.EvaluateAgreement(ctx, platform, agreement, commits), nil
}

// EvaluateAgreement evaluates commits against an agreement the caller has
// already loaded. A nil agreement passes every commit without any lookups.
func (e *ComplianceEvaluator) EvaluateAgreement(
	ctx context.Context,
	platform driven.PlatformClient,
	agreement *model.Agreement,
	commits []model.ResolvedCommit,
) Evaluation {
	verdicts := make([]model.CommitVerdict, 0, len(commits))

	if agreement == nil {
		for _, c := range commits {
			verdicts = append(verdicts, model.CommitVerdict{SHA: c.SHA, Verdict: model.VerdictSuccess})
		}
		return Evaluation{Commits: verdicts}
	}

	run := &evaluationRun{
		evaluator:  e,
		platform:   platform,
		agreement:  agreement,
		repo:       agreement.Repository(),
		identities: make(map[string]identityOutcome),
		users:      make(map[int64]identityOutcome),
	}

	for _, c := range commits {
		verdicts = append(verdicts, run.commit(ctx, c))
	}

	return Evaluation{Agreement: agreement, Commits: verdicts}
}

// identityOutcome is the evaluated status of one identity or user, or the
// store error that prevented evaluating it.
type identityOutcome struct {
	result model.ContributorResult
	err    error
}

// evaluationRun holds the per-invocation lookups so that each distinct
// identity is resolved once and each distinct user is checked once.
type evaluationRun struct {
	evaluator  *ComplianceEvaluator
	platform   driven.PlatformClient
	agreement  *model.Agreement
	repo       model.Repository
	identities map[string]identityOutcome
	users      map[int64]identityOutcome
}

func (r *evaluationRun) commit(ctx context.Context, c model.ResolvedCommit) model.CommitVerdict {
	verdict := model.CommitVerdict{
		SHA:          c.SHA,
		Verdict:      model.VerdictSuccess,
		Contributors: make([]model.ContributorResult, 0, len(c.Contributors)),
	}

	for _, id := range c.Contributors {
		outcome := r.identity(ctx, id)
		if outcome.err != nil {
			verdict.Err = outcome.err
			verdict.Verdict = ""
			return verdict
		}

		verdict.Contributors = append(verdict.Contributors, outcome.result)
		if !outcome.result.Status.Satisfied() {
			verdict.Verdict = model.VerdictFailure
		}
	}

	return verdict
}

func (r *evaluationRun) identity(ctx context.Context, id model.Identity) identityOutcome {
	key := id.Key()
	if cached, ok := r.identities[key]; ok {
		cached.result.Identity = id
		return cached
	}

	outcome := r.resolve(ctx, id)
	r.identities[key] = outcome
	return outcome
}

func (r *evaluationRun) resolve(ctx context.Context, id model.Identity) identityOutcome {
	user, err := r.findUser(ctx, id)
	if err != nil {
		return identityOutcome{err: err}
	}
	if user == nil {
		return identityOutcome{result: model.ContributorResult{Identity: id, Status: model.StatusUnsigned}}
	}

	if cached, ok := r.users[user.ID]; ok {
		cached.result.Identity = id
		return cached
	}

	outcome := r.userStatus(ctx, id, user)
	r.users[user.ID] = outcome
	return outcome
}

// findUser matches the login exactly first, then falls back to the email.
func (r *evaluationRun) findUser(ctx context.Context, id model.Identity) (*model.User, error) {
	store := r.evaluator.store

	if id.Login != "" {
		user, err := store.FindUser(ctx, id.Login)
		if err != nil {
			return nil, fmt.Errorf("find user %q: %w", id.Login, err)
		}
		if user != nil {
			return user, nil
		}
	}

	if id.Email == "" {
		return nil, nil
	}

	user, err := store.FindUser(ctx, id.Email)
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", id.Email, err)
	}
	return user, nil
}

func (r *evaluationRun) userStatus(ctx context.Context, id model.Identity, user *model.User) identityOutcome {
	result := model.ContributorResult{Identity: id, UserID: user.ID}

	switch r.platform.CheckCollaborator(ctx, r.repo, user.Login) {
	case driven.Collaborator:
		result.Status = model.StatusExempt
		return identityOutcome{result: result}
	case driven.CheckFailed:
		r.evaluator.logger.Info("collaborator check failed, treating as not exempt",
			"repo", r.repo.FullName(), "login", user.Login)
	case driven.NotCollaborator:
	}

	signed, err := r.evaluator.store.HasSignature(ctx, user.ID, r.agreement.ID)
	if err != nil {
		return identityOutcome{err: fmt.Errorf("check signature of %s: %w", user.Login, err)}
	}

	if signed {
		result.Status = model.StatusSigned
	} else {
		result.Status = model.StatusUnsigned
	}
	return identityOutcome{result: result}
}
