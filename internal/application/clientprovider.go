package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// PlatformFactory builds a PlatformClient authenticated with token.
type PlatformFactory func(token string) (driven.PlatformClient, error)

type cachedClient struct {
	token  string
	client driven.PlatformClient
}

// PlatformClientProvider hands out GitHub clients authenticated as a given
// user. Clients are cached per user and rebuilt when the user's token changes,
// so a fresh OAuth login takes effect without a restart.
type PlatformClientProvider struct {
	users   driven.UserStore
	factory PlatformFactory

	mu      sync.RWMutex
	clients map[int64]cachedClient
}

// NewPlatformClientProvider creates a provider that loads tokens from users.
func NewPlatformClientProvider(users driven.UserStore, factory PlatformFactory) *PlatformClientProvider {
	return &PlatformClientProvider{
		users:   users,
		factory: factory,
		clients: make(map[int64]cachedClient),
	}
}

// ForUser returns a client acting as userID.
func (p *PlatformClientProvider) ForUser(ctx context.Context, userID int64) (driven.PlatformClient, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load token owner %d: %w", userID, err)
	}
	if user.OAuthToken == "" {
		return nil, fmt.Errorf("user %s has no OAuth token", user.Login)
	}

	p.mu.RLock()
	cached, ok := p.clients[userID]
	p.mu.RUnlock()
	if ok && cached.token == user.OAuthToken {
		return cached.client, nil
	}

	client, err := p.factory(user.OAuthToken)
	if err != nil {
		return nil, fmt.Errorf("build client for %s: %w", user.Login, err)
	}

	p.mu.Lock()
	p.clients[userID] = cachedClient{token: user.OAuthToken, client: client}
	p.mu.Unlock()

	return client, nil
}

// Forget drops the cached client for userID.
func (p *PlatformClientProvider) Forget(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, userID)
}
