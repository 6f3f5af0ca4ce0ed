package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/clagate/internal/domain/model"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEncryptionKeyNotSet is returned when an OAuth token must be stored or
	// read but CLAGATE_SECRET_KEY has not been configured.
	ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set CLAGATE_SECRET_KEY")
)

// UserStore defines the driven port for user persistence. The adapter
// encrypts OAuth tokens; this interface operates on plaintext.
type UserStore interface {
	// UpsertFromOAuth creates or updates the user identified by identity.UID.
	UpsertFromOAuth(ctx context.Context, identity model.OAuthIdentity) (*model.User, error)
	// GetByID returns ErrUserNotFound when no user has the id. The user
	// carries its plaintext OAuthToken.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByLogin returns nil, nil when no user has the login. The returned
	// user carries no OAuthToken.
	GetByLogin(ctx context.Context, login string) (*model.User, error)
}
