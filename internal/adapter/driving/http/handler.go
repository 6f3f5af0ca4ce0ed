// Package httphandler is the HTTP driving adapter: the GitHub webhook
// endpoint, the public agreement page and the health check.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/clagate/internal/application"
	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// Dispatcher processes one decoded webhook delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, event model.Event) (application.CheckSummary, error)
}

// AgreementFinder looks up the agreement shown on the public page.
type AgreementFinder interface {
	FindByRepository(ctx context.Context, owner, repo string) (*model.Agreement, error)
}

// HealthChecker reports the state of local dependencies.
type HealthChecker interface {
	Check(ctx context.Context) application.HealthReport
}

// Handler is the HTTP driving adapter.
type Handler struct {
	dispatcher    Dispatcher
	agreements    AgreementFinder
	health        HealthChecker
	webhookSecret []byte
	logger        *slog.Logger
}

// NewHandler creates a Handler. An empty webhookSecret disables signature
// verification of deliveries.
func NewHandler(
	dispatcher Dispatcher,
	agreements AgreementFinder,
	health HealthChecker,
	webhookSecret string,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		dispatcher: dispatcher,
		agreements: agreements,
		health:     health,
		logger:     logger,
	}
	if webhookSecret != "" {
		h.webhookSecret = []byte(webhookSecret)
	}
	return h
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /repo_hook", h.RepoHook)
	mux.HandleFunc("GET /agreements/{owner}/{repo}", h.AgreementPage)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports whether the database is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
