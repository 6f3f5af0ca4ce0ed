package httphandler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// maxPayloadBytes matches GitHub's cap on webhook payloads.
const maxPayloadBytes = 25 << 20

// dispatchTimeout bounds the processing of one delivery. GitHub gives up on a
// delivery after 10s, but its commits still need their statuses.
const dispatchTimeout = 5 * time.Minute

var errBadSignature = errors.New("webhook signature mismatch")

// RepoHook receives GitHub deliveries. It answers 200 "OK" whatever happens
// to the commits inside; verdicts travel through commit statuses. The only
// other answer is 401 for a push or pull_request whose signature does not
// match the configured secret.
func (h *Handler) RepoHook(w http.ResponseWriter, r *http.Request) {
	eventType := gh.WebHookType(r)
	deliveryID := gh.DeliveryID(r)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	logger := h.logger.With("delivery", deliveryID, "event", eventType)

	kind := model.EventKind(eventType)
	if kind != model.EventPush && kind != model.EventPullRequest {
		logger.Debug("ignoring webhook event")
		writeOK(w)
		return
	}

	payload, err := h.readPayload(w, r)
	if errors.Is(err, errBadSignature) {
		logger.Warn("rejecting webhook with bad signature")
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}
	if err != nil {
		logger.Warn("unreadable webhook payload", "error", err)
		writeOK(w)
		return
	}

	event, err := decodeEvent(kind, deliveryID, payload)
	if err != nil {
		logger.Warn("undecodable webhook payload", "error", err)
		writeOK(w)
		return
	}

	// Processing outlives the caller: a disconnect must not cancel status writes.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), dispatchTimeout)
	defer cancel()

	if _, err := h.dispatcher.Dispatch(ctx, event); err != nil {
		logger.Error("webhook processing failed", "error", err)
	}
	writeOK(w)
}

// readPayload extracts the JSON payload from a JSON or form-encoded body and,
// when a secret is configured, verifies X-Hub-Signature-256 (or the legacy
// X-Hub-Signature) over the raw body.
func (h *Handler) readPayload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if h.webhookSecret != nil {
		signature := r.Header.Get(gh.SHA256SignatureHeader)
		if signature == "" {
			signature = r.Header.Get(gh.SHA1SignatureHeader)
		}
		if err := gh.ValidateSignature(signature, body, h.webhookSecret); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadSignature, err)
		}
	}

	contentType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if contentType, _, err = mime.ParseMediaType(ct); err != nil {
			return nil, fmt.Errorf("parse content type: %w", err)
		}
	}

	payload, err := gh.ValidatePayloadFromBody(contentType, bytes.NewReader(body), "", nil)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// decodeEvent maps a go-github webhook payload onto the domain event.
func decodeEvent(kind model.EventKind, deliveryID string, payload []byte) (model.Event, error) {
	parsed, err := gh.ParseWebHook(string(kind), payload)
	if err != nil {
		return model.Event{}, fmt.Errorf("parse %s payload: %w", kind, err)
	}

	event := model.Event{Kind: kind, DeliveryID: deliveryID}

	switch p := parsed.(type) {
	case *gh.PushEvent:
		owner := p.GetRepo().GetOwner()
		repo := model.Repository{Owner: owner.GetLogin(), Name: p.GetRepo().GetName()}
		if repo.Owner == "" {
			// Older push payloads only carry the owner's name.
			repo.Owner = owner.GetName()
		}
		if repo.IsZero() {
			return model.Event{}, errors.New("push payload has no repository")
		}

		commits := make([]model.Commit, 0, len(p.Commits))
		for _, c := range p.Commits {
			commits = append(commits, model.Commit{
				SHA:       c.GetID(),
				Author:    pushIdentity(c.GetAuthor()),
				Committer: pushIdentity(c.GetCommitter()),
			})
		}
		event.Push = &model.PushEvent{DeliveryID: deliveryID, Repository: repo, Commits: commits}

	case *gh.PullRequestEvent:
		repo := model.Repository{Owner: p.GetRepo().GetOwner().GetLogin(), Name: p.GetRepo().GetName()}
		if repo.IsZero() {
			return model.Event{}, errors.New("pull_request payload has no repository")
		}
		event.PullRequest = &model.PullRequestEvent{
			DeliveryID: deliveryID,
			Action:     p.GetAction(),
			Repository: repo,
			Number:     p.GetNumber(),
		}

	default:
		return model.Event{}, fmt.Errorf("unexpected payload type %T", parsed)
	}

	return event, nil
}

// pushIdentity reads a push commit's author or committer. GitHub sends the
// linked account's login as "username".
func pushIdentity(a *gh.CommitAuthor) *model.Identity {
	if a == nil {
		return nil
	}
	return &model.Identity{Login: a.GetLogin(), Name: a.GetName(), Email: a.GetEmail()}
}
