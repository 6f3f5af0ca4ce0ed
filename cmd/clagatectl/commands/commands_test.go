package commands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// fakeGitHub serves the endpoints the admin commands reach.
type fakeGitHub struct {
	hooksCreated atomic.Int32
	hooksDeleted atomic.Int32
	lastAuth     atomic.Value
}

func (f *fakeGitHub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/widgets/hooks", func(w http.ResponseWriter, r *http.Request) {
		f.hooksCreated.Add(1)
		f.lastAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 9, "name": "web", "active": true, "events": ["push", "pull_request"],
			"config": {"url": "https://cla.example.com/repo_hook", "content_type": "json"}}`)
	})
	mux.HandleFunc("DELETE /repos/acme/widgets/hooks/9", func(w http.ResponseWriter, _ *http.Request) {
		f.hooksDeleted.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /repos/acme/widgets/pulls", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	mux.HandleFunc("GET /user/repos", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"name": "widgets", "owner": {"login": "acme"}}, {"name": "dotfiles", "owner": {"login": "alice"}}]`)
	})
	mux.HandleFunc("GET /user/orgs", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	return mux
}

func setupEnv(t *testing.T) *fakeGitHub {
	t.Helper()

	fake := &fakeGitHub{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	t.Setenv("CLAGATE_DB_PATH", filepath.Join(t.TempDir(), "clagate.db"))
	t.Setenv("CLAGATE_SECRET_KEY", testKeyHex)
	t.Setenv("CLAGATE_GITHUB_API_URL", srv.URL+"/")
	t.Setenv("CLAGATE_PUBLIC_URL", "https://cla.example.com")
	t.Setenv("CLAGATE_ADMIN_REPO", "")
	t.Setenv("CLAGATE_WEBHOOK_SECRET", "")

	return fake
}

func TestRootHelp_ListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "Usage:")
	for _, sub := range []string{"migrate", "user", "agreement", "hook", "sign", "recheck", "repos", "version"} {
		assert.Contains(t, out, sub)
	}
	assert.Contains(t, out, "CLAGATE_DB_PATH")
}

func TestVersion(t *testing.T) {
	t.Setenv("CLAGATE_VERSION", "1.2.3")

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "clagatectl version 1.2.3\n", out)
}

func TestMigrate(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "migrate")

	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1 (clean)")
}

func TestAgreementLifecycle(t *testing.T) {
	fake := setupEnv(t)

	textFile := filepath.Join(t.TempDir(), "cla.md")
	require.NoError(t, os.WriteFile(textFile, []byte("# Widgets CLA\n\nYou grant us a licence.\n"), 0o600))

	t.Setenv("CLAGATE_USER_TOKEN", "ghp_alice")
	out, err := execute(t, "user", "add", "--uid", "1001", "--login", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "user alice")

	out, err = execute(t, "agreement", "register", "acme/widgets",
		"--as", "alice", "--text-file", textFile, "--field", "name", "--field", "email")
	require.NoError(t, err)
	assert.Contains(t, out, "on acme/widgets (hook 9)")
	assert.Equal(t, int32(1), fake.hooksCreated.Load())
	assert.Equal(t, "Bearer ghp_alice", fake.lastAuth.Load())

	out, err = execute(t, "agreement", "show", "acme/widgets")
	require.NoError(t, err)
	assert.Contains(t, out, "hook:       9")
	assert.Contains(t, out, "fields:     name, email")
	assert.Contains(t, out, "signatures: 0")
	assert.Contains(t, out, "https://cla.example.com/agreements/acme/widgets")

	out, err = execute(t, "sign", "acme/widgets", "--as", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice signed acme/widgets: 0 commits, 0 reported, 0 failed, 0 skipped\n", out)

	out, err = execute(t, "sign", "acme/widgets", "--as", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice already signed acme/widgets\n", out)

	out, err = execute(t, "recheck", "acme/widgets")
	require.NoError(t, err)
	assert.Contains(t, out, "rechecked acme/widgets")

	out, err = execute(t, "repos", "--as", "alice")
	require.NoError(t, err)
	assert.Equal(t, "  alice/dotfiles\n* acme/widgets\n", out)

	out, err = execute(t, "hook", "delete", "acme/widgets")
	require.NoError(t, err)
	assert.Contains(t, out, "hook removed from acme/widgets")
	assert.Equal(t, int32(1), fake.hooksDeleted.Load())

	out, err = execute(t, "agreement", "show", "acme/widgets")
	require.NoError(t, err)
	assert.Contains(t, out, "hook:       0")
	assert.Contains(t, out, "signatures: 1")
}

func TestAgreementRegister_Errors(t *testing.T) {
	setupEnv(t)

	textFile := filepath.Join(t.TempDir(), "cla.md")
	require.NoError(t, os.WriteFile(textFile, []byte("terms"), 0o600))

	_, err := execute(t, "agreement", "register", "acme", "--as", "alice", "--text-file", textFile)
	assert.ErrorContains(t, err, "not owner/repo")

	_, err = execute(t, "agreement", "register", "acme/widgets", "--text-file", textFile)
	assert.ErrorContains(t, err, "--as is required")

	_, err = execute(t, "agreement", "register", "acme/widgets", "--as", "nobody", "--text-file", textFile)
	assert.ErrorContains(t, err, `unknown user "nobody"`)

	empty := filepath.Join(t.TempDir(), "empty.md")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))
	_, err = execute(t, "agreement", "register", "acme/widgets", "--as", "alice", "--text-file", empty)
	assert.ErrorContains(t, err, "agreement text is empty")
}

func TestUserAdd_TokenSources(t *testing.T) {
	fake := setupEnv(t)
	t.Setenv("CLAGATE_USER_TOKEN", "")

	_, err := execute(t, "user", "add", "--uid", "7", "--login", "carol")
	assert.ErrorContains(t, err, "CLAGATE_USER_TOKEN")

	_, err = execute(t, "user", "add", "--uid", "7", "--login", "carol", "--token", "ghp_argv")
	assert.Error(t, err, "tokens are not accepted on the command line")

	out, err := executeWithInput(t, "ghp_carol\n", "user", "add", "--uid", "7", "--login", "carol", "--token-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "user carol")

	// The stored token is the one read from stdin.
	textFile := filepath.Join(t.TempDir(), "cla.md")
	require.NoError(t, os.WriteFile(textFile, []byte("terms"), 0o600))
	_, err = execute(t, "agreement", "register", "acme/widgets", "--as", "carol", "--text-file", textFile)
	require.NoError(t, err)
	assert.Equal(t, "Bearer ghp_carol", fake.lastAuth.Load())
}

func TestAgreementShow_Missing(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "agreement", "show", "acme/none")

	assert.ErrorContains(t, err, "acme/none")
}

func TestParseRepository(t *testing.T) {
	repo, err := parseRepository("acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, "acme", repo.Owner)
	assert.Equal(t, "widgets", repo.Name)

	for _, bad := range []string{"", "acme", "/widgets", "acme/", "acme/widgets/extra"} {
		_, err := parseRepository(bad)
		assert.Error(t, err, bad)
	}
}
