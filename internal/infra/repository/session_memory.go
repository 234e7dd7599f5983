package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/internal/usecase"
)

// MemorySessionRepository keeps sessions in process. Sessions expire after
// ttl without being saved.
type MemorySessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

var _ usecase.SessionRepository = (*MemorySessionRepository)(nil)

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemorySessionRepository{
		cache: cache.New(ttl, 15*time.Minute),
		ttl:   ttl,
	}
}

func (r *MemorySessionRepository) Get(ctx context.Context, id string) (domain.Session, error) {
	x, found := r.cache.Get(sessionKey(id))
	if !found {
		return domain.Session{}, errSessionNotFound
	}
	session := x.(domain.Session)
	session.AppForm.Files = append([]string{}, session.AppForm.Files...)
	return session, nil
}

func (r *MemorySessionRepository) Save(ctx context.Context, session domain.Session) error {
	session.AppForm.Files = append([]string{}, session.AppForm.Files...)
	r.cache.Set(sessionKey(session.ID), session, r.ttl)
	return nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.cache.Delete(sessionKey(id))
	return nil
}
