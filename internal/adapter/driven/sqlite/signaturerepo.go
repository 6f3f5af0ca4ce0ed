package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SignatureStore = (*SignatureRepo)(nil)

// SignatureRepo is the SQLite implementation of the SignatureStore port interface.
// Signatures are insert-only.
type SignatureRepo struct {
	db *DB
}

// NewSignatureRepo creates a new SignatureRepo backed by the given DB.
func NewSignatureRepo(db *DB) *SignatureRepo {
	return &SignatureRepo{db: db}
}

// Create records that userID accepted agreementID. A second call for the same
// pair returns ErrSignatureExists and leaves the original row untouched.
func (r *SignatureRepo) Create(ctx context.Context, userID, agreementID int64) (*model.Signature, error) {
	const query = `INSERT INTO signatures (user_id, agreement_id, signed_at) VALUES (?, ?, ?)`

	ts := now()
	result, err := r.db.Writer.ExecContext(ctx, query, userID, agreementID, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("sign agreement %d as user %d: %w", agreementID, userID, driven.ErrSignatureExists)
		}
		return nil, fmt.Errorf("sign agreement %d as user %d: %w", agreementID, userID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get signature id: %w", err)
	}

	signedAt, err := parseTime(ts)
	if err != nil {
		return nil, err
	}

	return &model.Signature{ID: id, UserID: userID, AgreementID: agreementID, SignedAt: signedAt}, nil
}

// Exists reports whether userID has signed agreementID.
func (r *SignatureRepo) Exists(ctx context.Context, userID, agreementID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM signatures WHERE user_id = ? AND agreement_id = ?)`

	var exists bool
	if err := r.db.Reader.QueryRowContext(ctx, query, userID, agreementID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check signature of user %d on agreement %d: %w", userID, agreementID, err)
	}
	return exists, nil
}

// ListByAgreement returns the agreement's signatures, oldest first.
func (r *SignatureRepo) ListByAgreement(ctx context.Context, agreementID int64) ([]model.Signature, error) {
	const query = `SELECT id, user_id, agreement_id, signed_at FROM signatures WHERE agreement_id = ? ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query, agreementID)
	if err != nil {
		return nil, fmt.Errorf("list signatures for agreement %d: %w", agreementID, err)
	}
	defer rows.Close()

	sigs := []model.Signature{}
	for rows.Next() {
		var (
			s        model.Signature
			signedAt string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.AgreementID, &signedAt); err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		if s.SignedAt, err = parseTime(signedAt); err != nil {
			return nil, fmt.Errorf("parse signed_at: %w", err)
		}
		sigs = append(sigs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signatures: %w", err)
	}

	return sigs, nil
}
