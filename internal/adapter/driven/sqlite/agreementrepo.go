package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AgreementStore = (*AgreementRepo)(nil)

const agreementColumns = `id, user_id, owner, repo, text, required_fields, hook_id, created_at, updated_at`

// AgreementRepo is the SQLite implementation of the AgreementStore port interface.
// Required fields are stored as a JSON array.
type AgreementRepo struct {
	db *DB
}

// NewAgreementRepo creates a new AgreementRepo backed by the given DB.
func NewAgreementRepo(db *DB) *AgreementRepo {
	return &AgreementRepo{db: db}
}

// Create inserts an agreement. Returns ErrAgreementExists if the repository
// already has one.
func (r *AgreementRepo) Create(ctx context.Context, a model.Agreement) (*model.Agreement, error) {
	fields, err := encodeFields(a.RequiredFields)
	if err != nil {
		return nil, err
	}

	const query = `
		INSERT INTO agreements (user_id, owner, repo, text, required_fields, hook_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	ts := now()
	result, err := r.db.Writer.ExecContext(ctx, query, a.UserID, a.Owner, a.Repo, a.Text, fields, a.HookID, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create agreement for %s/%s: %w", a.Owner, a.Repo, driven.ErrAgreementExists)
		}
		return nil, fmt.Errorf("create agreement for %s/%s: %w", a.Owner, a.Repo, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get agreement id: %w", err)
	}

	created, err := scanAgreement(r.db.Writer.QueryRowContext(ctx,
		`SELECT `+agreementColumns+` FROM agreements WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("reload agreement %d: %w", id, err)
	}
	return created, nil
}

// FindByRepository returns nil, nil when the repository has no agreement.
func (r *AgreementRepo) FindByRepository(ctx context.Context, owner, repo string) (*model.Agreement, error) {
	a, err := scanAgreement(r.db.Reader.QueryRowContext(ctx,
		`SELECT `+agreementColumns+` FROM agreements WHERE owner = ? AND repo = ?`, owner, repo))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find agreement for %s/%s: %w", owner, repo, err)
	}
	return a, nil
}

// Update replaces the agreement text and required fields.
func (r *AgreementRepo) Update(ctx context.Context, owner, repo, text string, requiredFields []string) error {
	fields, err := encodeFields(requiredFields)
	if err != nil {
		return err
	}

	const query = `UPDATE agreements SET text = ?, required_fields = ?, updated_at = ? WHERE owner = ? AND repo = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, text, fields, now(), owner, repo)
	if err != nil {
		return fmt.Errorf("update agreement for %s/%s: %w", owner, repo, err)
	}
	return requireOneRow(result, fmt.Sprintf("update agreement for %s/%s", owner, repo))
}

// SetHookID records the webhook registration id.
func (r *AgreementRepo) SetHookID(ctx context.Context, agreementID, hookID int64) error {
	const query = `UPDATE agreements SET hook_id = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, hookID, now(), agreementID)
	if err != nil {
		return fmt.Errorf("set hook id on agreement %d: %w", agreementID, err)
	}
	return requireOneRow(result, fmt.Sprintf("set hook id on agreement %d", agreementID))
}

// ListAll returns every agreement ordered by owner and repository.
func (r *AgreementRepo) ListAll(ctx context.Context) ([]model.Agreement, error) {
	rows, err := r.db.Reader.QueryContext(ctx, `SELECT `+agreementColumns+` FROM agreements ORDER BY owner, repo`)
	if err != nil {
		return nil, fmt.Errorf("list agreements: %w", err)
	}
	defer rows.Close()

	agreements := []model.Agreement{}
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agreement: %w", err)
		}
		agreements = append(agreements, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agreements: %w", err)
	}

	return agreements, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAgreement(s scanner) (*model.Agreement, error) {
	var (
		a                    model.Agreement
		fields               string
		createdAt, updatedAt string
	)

	if err := s.Scan(&a.ID, &a.UserID, &a.Owner, &a.Repo, &a.Text, &fields, &a.HookID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(fields), &a.RequiredFields); err != nil {
		return nil, fmt.Errorf("decode required_fields: %w", err)
	}

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &a, nil
}

func encodeFields(fields []string) (string, error) {
	if fields == nil {
		fields = []string{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode required_fields: %w", err)
	}
	return string(b), nil
}

func requireOneRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: check rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, driven.ErrAgreementNotFound)
	}
	return nil
}
