package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// ErrNotAuthorized is returned when a user may not register agreements.
var ErrNotAuthorized = errors.New("user may not create agreements")

// HookName is the GitHub hook type used for deliveries.
const HookName = "web"

// hookEvents are the events the gate subscribes to.
var hookEvents = []string{string(model.EventPush), string(model.EventPullRequest)}

// AgreementServiceConfig holds the startup settings AgreementService needs.
type AgreementServiceConfig struct {
	// PublicURL is where GitHub delivers webhooks (PublicURL + "/repo_hook").
	PublicURL string
	// WebhookSecret is set on new hooks when non-empty.
	WebhookSecret string
	// AdminRepo restricts registration to its collaborators when non-zero.
	AdminRepo model.Repository
}

// AgreementService registers agreements and their webhooks.
type AgreementService struct {
	agreements driven.AgreementStore
	clients    ClientSource
	hooks      *HookManager
	cfg        AgreementServiceConfig
	logger     *slog.Logger
}

// NewAgreementService creates an AgreementService.
func NewAgreementService(
	agreements driven.AgreementStore,
	clients ClientSource,
	hooks *HookManager,
	cfg AgreementServiceConfig,
	logger *slog.Logger,
) *AgreementService {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	return &AgreementService{agreements: agreements, clients: clients, hooks: hooks, cfg: cfg, logger: logger}
}

// HookSpec is the webhook every agreement's repository gets.
func (s *AgreementService) HookSpec() model.Hook {
	config := map[string]any{
		"url":          s.cfg.PublicURL + "/repo_hook",
		"content_type": "json",
		"insecure_ssl": "0",
	}
	if s.cfg.WebhookSecret != "" {
		config["secret"] = s.cfg.WebhookSecret
	}
	return model.Hook{
		Name:   HookName,
		Config: config,
		Events: append([]string(nil), hookEvents...),
		Active: true,
	}
}

// CanCreateAgreements reports whether user may register agreements. Without
// an admin repository everyone may; with one, only its collaborators, and a
// failed check counts as no.
func (s *AgreementService) CanCreateAgreements(ctx context.Context, user model.User) (bool, error) {
	if s.cfg.AdminRepo.IsZero() {
		return true, nil
	}

	platform, err := s.clients.ForUser(ctx, user.ID)
	if err != nil {
		return false, err
	}

	return platform.CheckCollaborator(ctx, s.cfg.AdminRepo, user.Login) == driven.Collaborator, nil
}

// Register creates the agreement for repo and makes sure its webhook exists.
// The agreement is kept even when hook registration fails so that the hook
// can be retried with EnsureHook.
func (s *AgreementService) Register(
	ctx context.Context,
	user model.User,
	repo model.Repository,
	text string,
	requiredFields []string,
) (*model.Agreement, error) {
	allowed, err := s.CanCreateAgreements(ctx, user)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("register %s as %s: %w", repo.FullName(), user.Login, ErrNotAuthorized)
	}

	agreement, err := s.agreements.Create(ctx, model.Agreement{
		UserID:         user.ID,
		Owner:          repo.Owner,
		Repo:           repo.Name,
		Text:           text,
		RequiredFields: requiredFields,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("agreement created", "repo", repo.FullName(), "owner", user.Login, "agreement_id", agreement.ID)

	hookID, err := s.EnsureHook(ctx, agreement)
	if err != nil {
		return agreement, err
	}
	agreement.HookID = hookID

	return agreement, nil
}

// EnsureHook registers the agreement's webhook (idempotently) and records its id.
func (s *AgreementService) EnsureHook(ctx context.Context, agreement *model.Agreement) (int64, error) {
	repo := agreement.Repository()

	platform, err := s.clients.ForUser(ctx, agreement.UserID)
	if err != nil {
		return 0, err
	}

	hookID, err := s.hooks.EnsureHook(ctx, platform, repo, s.HookSpec())
	if err != nil {
		return 0, fmt.Errorf("register hook on %s: %w", repo.FullName(), err)
	}

	if err := s.agreements.SetHookID(ctx, agreement.ID, hookID); err != nil {
		return 0, err
	}
	return hookID, nil
}

// DeleteHook removes the agreement's webhook. A hook that is already gone
// counts as deleted. The agreement itself is kept.
func (s *AgreementService) DeleteHook(ctx context.Context, agreement *model.Agreement) error {
	if agreement.HookID == 0 {
		return nil
	}

	platform, err := s.clients.ForUser(ctx, agreement.UserID)
	if err != nil {
		return err
	}

	if err := s.hooks.DeleteHook(ctx, platform, agreement.Repository(), agreement.HookID); err != nil {
		return fmt.Errorf("delete hook on %s: %w", agreement.Repository().FullName(), err)
	}
	return s.agreements.SetHookID(ctx, agreement.ID, 0)
}

// Update changes the agreement text and required fields.
func (s *AgreementService) Update(ctx context.Context, repo model.Repository, text string, requiredFields []string) error {
	return s.agreements.Update(ctx, repo.Owner, repo.Name, text, requiredFields)
}

// Find returns repo's agreement, or ErrAgreementNotFound.
func (s *AgreementService) Find(ctx context.Context, repo model.Repository) (*model.Agreement, error) {
	agreement, err := s.agreements.FindByRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, err
	}
	if agreement == nil {
		return nil, fmt.Errorf("%s: %w", repo.FullName(), driven.ErrAgreementNotFound)
	}
	return agreement, nil
}
