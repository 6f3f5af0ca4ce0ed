package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

var (
	// ErrAgreementNotFound indicates no agreement guards the repository.
	ErrAgreementNotFound = errors.New("agreement not found")

	// ErrAgreementExists indicates the repository already has an agreement.
	ErrAgreementExists = errors.New("agreement already exists")
)

// AgreementStore defines the driven port for agreement persistence.
type AgreementStore interface {
	// Create returns ErrAgreementExists when the repository already has one.
	Create(ctx context.Context, agreement model.Agreement) (*model.Agreement, error)
	// FindByRepository returns nil, nil when the repository has no agreement.
	FindByRepository(ctx context.Context, owner, repo string) (*model.Agreement, error)
	// Update changes text and required fields. Returns ErrAgreementNotFound.
	Update(ctx context.Context, owner, repo, text string, requiredFields []string) error
	// SetHookID records the webhook registration id. Returns ErrAgreementNotFound.
	SetHookID(ctx context.Context, agreementID, hookID int64) error
	ListAll(ctx context.Context) ([]model.Agreement, error)
}
