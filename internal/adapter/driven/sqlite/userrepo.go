package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port interface.
// OAuth tokens are encrypted with AES-256-GCM before write and decrypted
// after read; every other column is stored in the clear.
type UserRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil disables token storage.
}

// NewUserRepo creates a new UserRepo. key must be 32 bytes, or nil, in which
// case UpsertFromOAuth and GetByID return ErrEncryptionKeyNotSet.
func NewUserRepo(db *DB, key []byte) *UserRepo {
	return &UserRepo{db: db, key: key}
}

// UpsertFromOAuth creates the user identified by identity.UID or refreshes its
// login, name, email and token.
func (r *UserRepo) UpsertFromOAuth(ctx context.Context, identity model.OAuthIdentity) (*model.User, error) {
	if identity.UID == "" || identity.Login == "" {
		return nil, fmt.Errorf("upsert user: uid and login are required")
	}

	encrypted, err := r.encrypt(identity.Token)
	if err != nil {
		return nil, err
	}

	const query = `
		INSERT INTO users (uid, login, name, email, oauth_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			login = excluded.login,
			name = excluded.name,
			email = excluded.email,
			oauth_token = excluded.oauth_token,
			updated_at = excluded.updated_at`

	ts := now()
	_, err = r.db.Writer.ExecContext(ctx, query,
		identity.UID, identity.Login, identity.Name, identity.Email, encrypted, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", identity.Login, err)
	}

	// Read back through the writer so the caller sees its own write.
	const selectQuery = `SELECT id, uid, login, name, email, oauth_token, created_at, updated_at FROM users WHERE uid = ?`
	user, err := r.scanUser(r.db.Writer.QueryRowContext(ctx, selectQuery, identity.UID), true)
	if err != nil {
		return nil, fmt.Errorf("reload user %s: %w", identity.Login, err)
	}
	return user, nil
}

// GetByID returns the user with its decrypted OAuth token.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT id, uid, login, name, email, oauth_token, created_at, updated_at FROM users WHERE id = ?`

	user, err := r.scanUser(r.db.Reader.QueryRowContext(ctx, query, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user %d: %w", id, driven.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// GetByLogin returns the user without its token, or nil, nil when no user has
// the login. It works without an encryption key.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, uid, login, name, email, '', created_at, updated_at FROM users WHERE login = ? ORDER BY id LIMIT 1`

	user, err := r.scanUser(r.db.Reader.QueryRowContext(ctx, query, login), false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", login, err)
	}
	return user, nil
}

func (r *UserRepo) scanUser(row *sql.Row, decrypt bool) (*model.User, error) {
	var (
		u                    model.User
		token                string
		createdAt, updatedAt string
	)

	if err := row.Scan(&u.ID, &u.UID, &u.Login, &u.Name, &u.Email, &token, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if decrypt && token != "" {
		plaintext, err := r.decrypt(token)
		if err != nil {
			return nil, fmt.Errorf("decrypt token for %s: %w", u.Login, err)
		}
		u.OAuthToken = plaintext
	}

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &u, nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *UserRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// decrypt reverses encrypt.
func (r *UserRepo) decrypt(encoded string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}
	return string(plaintext), nil
}

func (r *UserRepo) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
