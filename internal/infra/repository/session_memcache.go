package repository

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"

	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/internal/usecase"
)

type MemcacheSessionRepository struct {
	mc  *memcache.Client
	ttl time.Duration
}

var _ usecase.SessionRepository = (*MemcacheSessionRepository)(nil)

// NewMemcacheSessionRepository stores sessions in memcached. Memcached caps
// relative expirations at 30 days.
func NewMemcacheSessionRepository(mc *memcache.Client, ttl time.Duration) *MemcacheSessionRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if ttl > 30*24*time.Hour {
		ttl = 30 * 24 * time.Hour
	}
	return &MemcacheSessionRepository{mc: mc, ttl: ttl}
}

func (r *MemcacheSessionRepository) Get(ctx context.Context, id string) (domain.Session, error) {
	_, span := tracer.Start(ctx, "Session.Repository.Memcache.Get")
	defer span.End()

	item, err := r.mc.Get(sessionKey(id))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return domain.Session{}, errSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		return domain.Session{}, errors.Wrap(err, "memcache get session")
	}
	return decodeSession(item.Value)
}

func (r *MemcacheSessionRepository) Save(ctx context.Context, session domain.Session) error {
	_, span := tracer.Start(ctx, "Session.Repository.Memcache.Save")
	defer span.End()

	b, err := encodeSession(session)
	if err != nil {
		return err
	}
	err = r.mc.Set(&memcache.Item{
		Key:        sessionKey(session.ID),
		Value:      b,
		Expiration: int32(r.ttl.Seconds()),
	})
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "memcache set session")
	}
	return nil
}

func (r *MemcacheSessionRepository) Delete(ctx context.Context, id string) error {
	err := r.mc.Delete(sessionKey(id))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return errors.Wrap(err, "memcache delete session")
	}
	return nil
}
