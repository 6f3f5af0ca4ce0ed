package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// testKey is a fixed 32-byte AES-256 key used only by tests.
var testKey = []byte("0123456789abcdef0123456789abcdef")

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() keeps tests isolated.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		url.PathEscape(t.Name()),
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// seedUser inserts a user with a token and returns it.
func seedUser(t *testing.T, db *DB, uid, login, email string) *model.User {
	t.Helper()

	u, err := NewUserRepo(db, testKey).UpsertFromOAuth(context.Background(), model.OAuthIdentity{
		UID:   uid,
		Login: login,
		Name:  login,
		Email: email,
		Token: "token-" + login,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", login, err)
	}
	return u
}

// seedAgreement inserts an agreement owned by userID.
func seedAgreement(t *testing.T, db *DB, userID int64, owner, repo string) *model.Agreement {
	t.Helper()

	a, err := NewAgreementRepo(db).Create(context.Background(), model.Agreement{
		UserID: userID,
		Owner:  owner,
		Repo:   repo,
		Text:   "You agree.",
	})
	if err != nil {
		t.Fatalf("seed agreement %s/%s: %v", owner, repo, err)
	}
	return a
}
