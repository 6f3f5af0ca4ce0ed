package httphandler_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/clagate/internal/adapter/driving/http"
	"github.com/ericfisherdev/clagate/internal/application"
	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// --- Mock implementations ---

type mockDispatcher struct {
	events []model.Event
	err    error
	panic  bool
}

func (m *mockDispatcher) Dispatch(_ context.Context, event model.Event) (application.CheckSummary, error) {
	if m.panic {
		panic("boom")
	}
	m.events = append(m.events, event)
	return application.CheckSummary{}, m.err
}

type mockAgreementFinder struct {
	agreement *model.Agreement
	err       error
}

func (m *mockAgreementFinder) FindByRepository(_ context.Context, owner, repo string) (*model.Agreement, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.agreement == nil || m.agreement.Owner != owner || m.agreement.Repo != repo {
		return nil, nil
	}
	return m.agreement, nil
}

type mockHealth struct {
	report application.HealthReport
}

func (m *mockHealth) Check(_ context.Context) application.HealthReport { return m.report }

type fixture struct {
	dispatcher *mockDispatcher
	agreements *mockAgreementFinder
	health     *mockHealth
	server     http.Handler
}

func newFixture(secret string) *fixture {
	f := &fixture{
		dispatcher: &mockDispatcher{},
		agreements: &mockAgreementFinder{},
		health:     &mockHealth{report: application.HealthReport{Status: "ok", Database: "ok", Time: time.Now()}},
	}
	h := httphandler.NewHandler(f.dispatcher, f.agreements, f.health, secret, slog.Default())
	f.server = httphandler.NewServeMux(h, slog.Default())
	return f
}

const pushPayload = `{
  "ref": "refs/heads/main",
  "repository": {"name": "widgets", "owner": {"login": "acme", "name": "acme"}},
  "commits": [
    {
      "id": "c1",
      "author": {"username": "alice", "name": "Alice", "email": "alice@example.com"},
      "committer": {"username": "bob", "name": "Bob", "email": "bob@example.com"}
    },
    {
      "id": "c2",
      "author": {"name": "Dave", "email": "dave@example.com"}
    }
  ]
}`

func deliver(t *testing.T, f *fixture, event, contentType, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/repo_hook", strings.NewReader(body))
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("X-GitHub-Delivery", "delivery-42")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestRepoHook_PushDecoded(t *testing.T) {
	f := newFixture("")

	rec := deliver(t, f, "push", "application/json", pushPayload, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	require.Len(t, f.dispatcher.events, 1)

	event := f.dispatcher.events[0]
	assert.Equal(t, model.EventPush, event.Kind)
	assert.Equal(t, "delivery-42", event.DeliveryID)
	require.NotNil(t, event.Push)
	assert.Equal(t, model.Repository{Owner: "acme", Name: "widgets"}, event.Push.Repository)
	require.Len(t, event.Push.Commits, 2)

	c1 := event.Push.Commits[0]
	assert.Equal(t, "c1", c1.SHA)
	assert.Equal(t, &model.Identity{Login: "alice", Name: "Alice", Email: "alice@example.com"}, c1.Author)
	assert.Equal(t, &model.Identity{Login: "bob", Name: "Bob", Email: "bob@example.com"}, c1.Committer)

	c2 := event.Push.Commits[1]
	assert.Equal(t, "dave@example.com", c2.Author.Email)
	assert.Empty(t, c2.Author.Login)
	assert.Nil(t, c2.Committer)
}

func TestRepoHook_OwnerNameFallback(t *testing.T) {
	f := newFixture("")
	body := `{"repository": {"name": "widgets", "owner": {"name": "acme"}}, "commits": []}`

	rec := deliver(t, f, "push", "application/json", body, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.dispatcher.events, 1)
	assert.Equal(t, "acme", f.dispatcher.events[0].Push.Repository.Owner)
}

func TestRepoHook_FormEncodedPayload(t *testing.T) {
	f := newFixture("")
	body := url.Values{"payload": {pushPayload}}.Encode()

	rec := deliver(t, f, "push", "application/x-www-form-urlencoded", body, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.dispatcher.events, 1)
	assert.Len(t, f.dispatcher.events[0].Push.Commits, 2)
}

func TestRepoHook_MissingContentTypeTreatedAsJSON(t *testing.T) {
	f := newFixture("")

	rec := deliver(t, f, "push", "", pushPayload, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.dispatcher.events, 1)
}

func TestRepoHook_PingIsAcknowledged(t *testing.T) {
	f := newFixture("s3cret")

	rec := deliver(t, f, "ping", "application/json", `{"zen":"Keep it logically awesome."}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Empty(t, f.dispatcher.events)
}

func TestRepoHook_UnknownEventIsAcknowledged(t *testing.T) {
	f := newFixture("")

	rec := deliver(t, f, "issues", "application/json", `not even json`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.dispatcher.events)
}

func TestRepoHook_MalformedPayloadStillOK(t *testing.T) {
	f := newFixture("")

	rec := deliver(t, f, "push", "application/json", `{"repository":`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Empty(t, f.dispatcher.events)
}

func TestRepoHook_DispatchErrorStillOK(t *testing.T) {
	f := newFixture("")
	f.dispatcher.err = errors.New("database locked")

	rec := deliver(t, f, "push", "application/json", pushPayload, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRepoHook_Signatures(t *testing.T) {
	const secret = "s3cret"

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		dispatched bool
	}{
		{
			name:       "valid sha256",
			headers:    map[string]string{"X-Hub-Signature-256": sign(secret, pushPayload)},
			wantStatus: http.StatusOK,
			dispatched: true,
		},
		{
			name:       "wrong secret",
			headers:    map[string]string{"X-Hub-Signature-256": sign("other", pushPayload)},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing signature",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(secret)

			rec := deliver(t, f, "push", "application/json", pushPayload, tt.headers)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.dispatched, len(f.dispatcher.events) == 1)
		})
	}
}

func TestRepoHook_SignatureIgnoredWithoutSecret(t *testing.T) {
	f := newFixture("")

	rec := deliver(t, f, "push", "application/json", pushPayload,
		map[string]string{"X-Hub-Signature-256": "sha256=deadbeef"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.dispatcher.events, 1)
}

func TestRepoHook_PullRequestDecoded(t *testing.T) {
	f := newFixture("")
	body := `{"action": "opened", "number": 7, "repository": {"name": "widgets", "owner": {"login": "acme"}}}`

	rec := deliver(t, f, "pull_request", "application/json", body, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.dispatcher.events, 1)
	pr := f.dispatcher.events[0].PullRequest
	require.NotNil(t, pr)
	assert.Equal(t, "opened", pr.Action)
	assert.Equal(t, 7, pr.Number)
	assert.Equal(t, model.Repository{Owner: "acme", Name: "widgets"}, pr.Repository)
}

func TestRepoHook_PanicRecovered(t *testing.T) {
	f := newFixture("")
	f.dispatcher.panic = true

	rec := deliver(t, f, "push", "application/json", pushPayload, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAgreementPage(t *testing.T) {
	f := newFixture("")
	f.agreements.agreement = &model.Agreement{
		Owner:          "acme",
		Repo:           "widgets",
		Text:           "# Terms\n\nYou **grant** us a licence.<script>alert(1)</script>",
		RequiredFields: []string{"name", "<b>mailing</b> address"},
	}

	req := httptest.NewRequest(http.MethodGet, "/agreements/acme/widgets", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "acme/widgets")
	assert.Contains(t, body, "<strong>grant</strong>")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;b&gt;mailing&lt;/b&gt; address")
}

func TestAgreementPage_NotFound(t *testing.T) {
	f := newFixture("")

	req := httptest.NewRequest(http.MethodGet, "/agreements/acme/none", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAgreementPage_StoreError(t *testing.T) {
	f := newFixture("")
	f.agreements.err = errors.New("disk")

	req := httptest.NewRequest(http.MethodGet, "/agreements/acme/widgets", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	f := newFixture("")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "time")

	f.health.report.Status = "degraded"
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// slowDispatcher reports the context state it observes after the caller has
// had time to give up.
type slowDispatcher struct {
	delay  time.Duration
	result chan error
}

func (d *slowDispatcher) Dispatch(ctx context.Context, _ model.Event) (application.CheckSummary, error) {
	time.Sleep(d.delay)
	if _, ok := ctx.Deadline(); !ok {
		d.result <- errors.New("dispatch context has no deadline")
		return application.CheckSummary{}, nil
	}
	d.result <- ctx.Err()
	return application.CheckSummary{}, nil
}

func TestRepoHook_ProcessingSurvivesClientDisconnect(t *testing.T) {
	dispatcher := &slowDispatcher{delay: 500 * time.Millisecond, result: make(chan error, 1)}
	h := httphandler.NewHandler(dispatcher, &mockAgreementFinder{}, &mockHealth{}, "", slog.Default())
	server := httptest.NewServer(httphandler.NewServeMux(h, slog.Default()))
	t.Cleanup(server.Close)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/repo_hook", strings.NewReader(pushPayload))
	require.NoError(t, err)
	req.Header.Set("X-GitHub-Event", "push")
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 100 * time.Millisecond}
	resp, err := client.Do(req)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.Error(t, err, "the client gives up before processing finishes")

	select {
	case ctxErr := <-dispatcher.result:
		assert.NoError(t, ctxErr)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch did not finish")
	}
}

func TestNewServeMux_NilLogger(t *testing.T) {
	f := newFixture("")
	h := httphandler.NewHandler(f.dispatcher, f.agreements, f.health, "", nil)
	server := httphandler.NewServeMux(h, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { server.ServeHTTP(rec, req) })

	assert.Equal(t, http.StatusOK, rec.Code)
}
