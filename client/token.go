package client

import (
	"context"
	"sync"
)

// TokenStore is the persisted access token slot. The gateway reads it when
// a bearer header is due and clears it when a service answers 401.
type TokenStore interface {
	AccessToken(ctx context.Context) string
	ClearAccessToken(ctx context.Context)
}

type tokenStoreKey struct{}

// ContextWithTokenStore makes requests issued with ctx use store instead of
// the client's default.
func ContextWithTokenStore(ctx context.Context, store TokenStore) context.Context {
	return context.WithValue(ctx, tokenStoreKey{}, store)
}

func (c *Client) tokenStore(ctx context.Context) TokenStore {
	if store, ok := ctx.Value(tokenStoreKey{}).(TokenStore); ok && store != nil {
		return store
	}
	return c.tokens
}

// MemoryTokenStore keeps a single token in memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) AccessToken(_ context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) ClearAccessToken(_ context.Context) {
	s.SetAccessToken("")
}
