package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// SignatureService records signatures and refreshes the statuses they affect.
type SignatureService struct {
	agreements driven.AgreementStore
	signatures driven.SignatureStore
	clients    ClientSource
	checker    *CommitChecker
	logger     *slog.Logger
}

// NewSignatureService creates a SignatureService.
func NewSignatureService(
	agreements driven.AgreementStore,
	signatures driven.SignatureStore,
	clients ClientSource,
	checker *CommitChecker,
	logger *slog.Logger,
) *SignatureService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignatureService{
		agreements: agreements,
		signatures: signatures,
		clients:    clients,
		checker:    checker,
		logger:     logger,
	}
}

// SignResult describes the outcome of Sign. Signature is nil when the user
// had already signed.
type SignResult struct {
	Signature     *model.Signature
	AlreadySigned bool
	Recheck       CheckSummary
}

// Sign records that user accepted repo's agreement, then re-evaluates the
// repository's open pull requests. Signing twice is not an error and triggers
// no recheck. A failed recheck is logged; the signature stands.
func (s *SignatureService) Sign(ctx context.Context, user model.User, repo model.Repository) (SignResult, error) {
	agreement, err := s.agreements.FindByRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		return SignResult{}, err
	}
	if agreement == nil {
		return SignResult{}, fmt.Errorf("sign %s: %w", repo.FullName(), driven.ErrAgreementNotFound)
	}

	sig, err := s.signatures.Create(ctx, user.ID, agreement.ID)
	switch {
	case errors.Is(err, driven.ErrSignatureExists):
		s.logger.Info("agreement already signed", "repo", repo.FullName(), "login", user.Login)
		return SignResult{AlreadySigned: true}, nil
	case err != nil:
		return SignResult{}, err
	}

	s.logger.Info("agreement signed", "repo", repo.FullName(), "login", user.Login)

	result := SignResult{Signature: sig}
	result.Recheck, err = s.recheck(ctx, agreement)
	if err != nil {
		s.logger.Error("recheck after signing failed", "repo", repo.FullName(), "error", err)
	}
	return result, nil
}

// RecheckOpenPullRequests re-evaluates and reports every open pull request of
// repo with the agreement owner's token.
func (s *SignatureService) RecheckOpenPullRequests(ctx context.Context, repo model.Repository) (CheckSummary, error) {
	agreement, err := s.agreements.FindByRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		return CheckSummary{}, err
	}
	if agreement == nil {
		return CheckSummary{}, fmt.Errorf("recheck %s: %w", repo.FullName(), driven.ErrAgreementNotFound)
	}
	return s.recheck(ctx, agreement)
}

func (s *SignatureService) recheck(ctx context.Context, agreement *model.Agreement) (CheckSummary, error) {
	platform, err := s.clients.ForUser(ctx, agreement.UserID)
	if err != nil {
		return CheckSummary{}, err
	}
	return s.checker.CheckOpenPullRequests(ctx, platform, agreement)
}
