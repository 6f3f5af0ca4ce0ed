package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ComplianceStore = (*ComplianceRepo)(nil)

// ComplianceRepo answers the evaluator's read-only questions. It never loads
// OAuth tokens, so it works without an encryption key.
type ComplianceRepo struct {
	db         *DB
	agreements *AgreementRepo
	signatures *SignatureRepo
}

// NewComplianceRepo creates a new ComplianceRepo backed by the given DB.
func NewComplianceRepo(db *DB) *ComplianceRepo {
	return &ComplianceRepo{
		db:         db,
		agreements: NewAgreementRepo(db),
		signatures: NewSignatureRepo(db),
	}
}

// FindAgreement returns nil, nil when the repository has no agreement.
func (r *ComplianceRepo) FindAgreement(ctx context.Context, owner, repo string) (*model.Agreement, error) {
	return r.agreements.FindByRepository(ctx, owner, repo)
}

// FindUser matches loginOrEmail against logins exactly first, then against
// emails ignoring case and surrounding whitespace. The oldest match wins.
func (r *ComplianceRepo) FindUser(ctx context.Context, loginOrEmail string) (*model.User, error) {
	key := strings.TrimSpace(loginOrEmail)
	if key == "" {
		return nil, nil
	}

	const byLogin = `SELECT id, uid, login, name, email, created_at, updated_at FROM users WHERE login = ? ORDER BY id LIMIT 1`
	user, err := scanPublicUser(r.db.Reader.QueryRowContext(ctx, byLogin, key))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find user by login %q: %w", key, err)
	}

	const byEmail = `SELECT id, uid, login, name, email, created_at, updated_at FROM users WHERE email <> '' AND lower(email) = ? ORDER BY id LIMIT 1`
	user, err = scanPublicUser(r.db.Reader.QueryRowContext(ctx, byEmail, strings.ToLower(key)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email %q: %w", key, err)
	}
	return user, nil
}

// HasSignature reports whether userID has signed agreementID.
func (r *ComplianceRepo) HasSignature(ctx context.Context, userID, agreementID int64) (bool, error) {
	return r.signatures.Exists(ctx, userID, agreementID)
}

func scanPublicUser(row *sql.Row) (*model.User, error) {
	var (
		u                    model.User
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.UID, &u.Login, &u.Name, &u.Email, &createdAt, &updatedAt); err != nil {
		return nil, err
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
