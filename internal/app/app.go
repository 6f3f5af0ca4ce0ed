// Package app builds the object graph shared by the server and the admin CLI.
package app

import (
	"context"
	"log/slog"

	githubadapter "github.com/ericfisherdev/clagate/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/clagate/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/clagate/internal/application"
	"github.com/ericfisherdev/clagate/internal/config"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// App holds the opened database, the stores and the application services.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sqliteadapter.DB

	Users      *sqliteadapter.UserRepo
	Agreements *sqliteadapter.AgreementRepo
	Signatures *sqliteadapter.SignatureRepo
	Compliance *sqliteadapter.ComplianceRepo

	Clients          *application.PlatformClientProvider
	Checker          *application.CommitChecker
	Dispatcher       *application.WebhookDispatcher
	AgreementService *application.AgreementService
	SignatureService *application.SignatureService
	Health           *application.HealthService
}

// New opens the database, applies migrations and wires every service.
// Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("database opened", "path", cfg.DBPath)

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("migrations complete")

	a := &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Users:      sqliteadapter.NewUserRepo(db, cfg.SecretKey),
		Agreements: sqliteadapter.NewAgreementRepo(db),
		Signatures: sqliteadapter.NewSignatureRepo(db),
		Compliance: sqliteadapter.NewComplianceRepo(db),
	}

	a.Clients = application.NewPlatformClientProvider(a.Users, a.platformFactory())

	evaluator := application.NewComplianceEvaluator(a.Compliance, logger)
	reporter := application.NewStatusReporter(cfg.PublicURL)
	a.Checker, err = application.NewCommitChecker(evaluator, reporter, logger, cfg.StatusConcurrency)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a.Dispatcher = application.NewWebhookDispatcher(a.Compliance, a.Clients, a.Checker, logger)
	a.AgreementService = application.NewAgreementService(
		a.Agreements,
		a.Clients,
		application.NewHookManager(logger),
		application.AgreementServiceConfig{
			PublicURL:     cfg.PublicURL,
			WebhookSecret: cfg.WebhookSecret,
			AdminRepo:     cfg.AdminRepo,
		},
		logger,
	)
	a.SignatureService = application.NewSignatureService(a.Agreements, a.Signatures, a.Clients, a.Checker, logger)
	a.Health = application.NewHealthService(db)

	if !cfg.HasSecretKey() {
		logger.Warn("no secret key configured, GitHub calls on behalf of users are disabled")
	}

	return a, nil
}

func (a *App) platformFactory() application.PlatformFactory {
	opts := githubadapter.Options{
		BaseURL: a.Config.GitHubAPIURL,
		Timeout: a.Config.GitHubTimeout,
		Logger:  a.Logger,
	}
	return func(token string) (driven.PlatformClient, error) {
		client, err := githubadapter.NewClient(token, opts)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Close releases the status pool and the database.
func (a *App) Close() error {
	a.Checker.Close()
	return a.DB.Close()
}
