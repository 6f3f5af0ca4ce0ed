package driven

import (
	"context"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

// ComplianceStore is the narrow read contract the evaluator needs.
// FindAgreement and FindUser return nil, nil when nothing matches.
type ComplianceStore interface {
	FindAgreement(ctx context.Context, owner, repo string) (*model.Agreement, error)
	// FindUser matches loginOrEmail against logins exactly, then against
	// emails case-insensitively.
	FindUser(ctx context.Context, loginOrEmail string) (*model.User, error)
	HasSignature(ctx context.Context, userID, agreementID int64) (bool, error)
}
