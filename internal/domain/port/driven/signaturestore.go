package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// ErrSignatureExists indicates the user already signed the agreement.
var ErrSignatureExists = errors.New("signature already exists")

// SignatureStore defines the driven port for signature persistence.
type SignatureStore interface {
	// Create returns ErrSignatureExists for a repeated (user, agreement) pair.
	Create(ctx context.Context, userID, agreementID int64) (*model.Signature, error)
	Exists(ctx context.Context, userID, agreementID int64) (bool, error)
	ListByAgreement(ctx context.Context, agreementID int64) ([]model.Signature, error)
}
