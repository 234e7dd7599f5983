package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/nextgen-portal/internal/domain"
	"github.com/totegamma/nextgen-portal/internal/infra/database"
	"github.com/totegamma/nextgen-portal/internal/usecase"
)

// exerciseRepository runs the behaviour every session store shares.
func exerciseRepository(t *testing.T, repo usecase.SessionRepository) {
	ctx := context.Background()
	id := uuid.NewString()

	_, err := repo.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	session := domain.NewSession(id, now)
	session.AccessToken = "token-1"
	session.Page = domain.Page{Section: "catalog", Title: "Catalog", Subtitle: "Local"}
	session.AppForm.Files = []string{"a.json"}
	require.NoError(t, repo.Save(ctx, session))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "token-1", got.AccessToken)
	assert.Equal(t, session.Page, got.Page)
	assert.Equal(t, []string{"a.json"}, got.AppForm.Files)

	session.AccessToken = ""
	session.AppForm.Files = []string{"a.json", "b.json"}
	require.NoError(t, repo.Save(ctx, session))

	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.AccessToken)
	assert.Equal(t, []string{"a.json", "b.json"}, got.AppForm.Files)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// deleting twice is fine
	require.NoError(t, repo.Delete(ctx, id))
}

func TestMemorySessionRepository(t *testing.T) {
	exerciseRepository(t, NewMemorySessionRepository(time.Minute))
}

func TestMemorySessionRepositoryIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository(time.Minute)

	session := domain.NewSession("s1", time.Now())
	session.AppForm.Files = []string{"x"}
	require.NoError(t, repo.Save(ctx, session))

	session.AppForm.Files[0] = "mutated"
	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.AppForm.Files)

	got.AppForm.Files[0] = "mutated"
	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, again.AppForm.Files)
}

func TestMemorySessionRepositoryExpiry(t *testing.T) {
	repo := NewMemorySessionRepository(20 * time.Millisecond)
	require.NoError(t, repo.Save(context.Background(), domain.NewSession("short", time.Now())))
	time.Sleep(40 * time.Millisecond)
	_, err := repo.Get(context.Background(), "short")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionEncoding(t *testing.T) {
	session := domain.NewSession("enc", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	session.AccessToken = "secret"

	b, err := encodeSession(session)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"accessToken":"secret"`)

	decoded, err := decodeSession(b)
	require.NoError(t, err)
	assert.Equal(t, session, decoded)

	legacy, err := decodeSession([]byte(`{"id":"old"}`))
	require.NoError(t, err)
	assert.NotNil(t, legacy.AppForm.Files)

	_, err = decodeSession([]byte(`not json`))
	assert.Error(t, err)
}

func TestRedisSessionRepository(t *testing.T) {
	addr := os.Getenv("NEXTGEN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("NEXTGEN_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	exerciseRepository(t, NewRedisSessionRepository(rdb, time.Minute))
}

func TestMemcacheSessionRepository(t *testing.T) {
	addr := os.Getenv("NEXTGEN_TEST_MEMCACHED_ADDR")
	if addr == "" {
		t.Skip("NEXTGEN_TEST_MEMCACHED_ADDR not set")
	}
	exerciseRepository(t, NewMemcacheSessionRepository(memcache.New(addr), time.Minute))
}

func TestPostgresSessionRepository(t *testing.T) {
	dsn := os.Getenv("NEXTGEN_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("NEXTGEN_TEST_POSTGRES_DSN not set")
	}
	db, err := database.NewPostgres(dsn)
	require.NoError(t, err)
	require.NoError(t, database.MigratePostgres(db))
	exerciseRepository(t, NewPostgresSessionRepository(db))
}
