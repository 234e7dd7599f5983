package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/internal/usecase"
)

type RedisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ usecase.SessionRepository = (*RedisSessionRepository)(nil)

func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) *RedisSessionRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionRepository) Get(ctx context.Context, id string) (domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Session.Repository.Redis.Get")
	defer span.End()

	b, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, errSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		return domain.Session{}, errors.Wrap(err, "redis get session")
	}
	return decodeSession(b)
}

func (r *RedisSessionRepository) Save(ctx context.Context, session domain.Session) error {
	ctx, span := tracer.Start(ctx, "Session.Repository.Redis.Save")
	defer span.End()

	b, err := encodeSession(session)
	if err != nil {
		return err
	}
	err = r.rdb.Set(ctx, sessionKey(session.ID), b, r.ttl).Err()
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "redis set session")
	}
	return nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	return errors.Wrap(r.rdb.Del(ctx, sessionKey(id)).Err(), "redis delete session")
}
