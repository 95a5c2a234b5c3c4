package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/repository"
	"github.com/meethere/meethere-api/internal/testutil"
)

func reservation(key string, userID int64, hash string, createdAt time.Time, ttl time.Duration) *repository.IdempotencyCacheEntry {
	return &repository.IdempotencyCacheEntry{
		Key:         key,
		UserID:      userID,
		RequestHash: hash,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(ttl),
	}
}

func TestIdempotencyRepository_ReserveCompleteGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()

	u := testutil.SeedTestUser(t, db, "u@test.com", "U")
	other := testutil.SeedTestUser(t, db, "o@test.com", "O")
	now := time.Now()

	ok, err := repo.Reserve(ctx, reservation("k1", u.ID, "h1", now, time.Hour))
	require.NoError(t, err)
	require.True(t, ok)

	again, err := repo.Reserve(ctx, reservation("k1", u.ID, "h2", now, time.Hour))
	require.NoError(t, err)
	assert.False(t, again, "a live key is never taken over")

	pending, err := repo.Get(ctx, "k1", u.ID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.True(t, pending.Pending())
	assert.Equal(t, "h1", pending.RequestHash)

	require.NoError(t, repo.Complete(ctx, "k1", u.ID, 201, []byte(`{"success":true}`)))
	require.ErrorIs(t, repo.Complete(ctx, "k1", u.ID, 201, []byte(`{}`)), domain.ErrNotFound)

	got, err := repo.Get(ctx, "k1", u.ID)
	require.NoError(t, err)
	assert.False(t, got.Pending())
	assert.Equal(t, 201, got.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(got.ResponseBody))

	missing, err := repo.Get(ctx, "k1", other.ID)
	require.NoError(t, err)
	assert.Nil(t, missing, "keys are scoped per user")
}

func TestIdempotencyRepository_ReleaseOnlyDropsPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()

	u := testutil.SeedTestUser(t, db, "u@test.com", "U")
	now := time.Now()

	_, err := repo.Reserve(ctx, reservation("open", u.ID, "h", now, time.Hour))
	require.NoError(t, err)
	_, err = repo.Reserve(ctx, reservation("done", u.ID, "h", now, time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Complete(ctx, "done", u.ID, 200, []byte(`{}`)))

	require.NoError(t, repo.Release(ctx, "open", u.ID))
	require.NoError(t, repo.Release(ctx, "done", u.ID))

	released, err := repo.Get(ctx, "open", u.ID)
	require.NoError(t, err)
	assert.Nil(t, released)
	kept, err := repo.Get(ctx, "done", u.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)

	ok, err := repo.Reserve(ctx, reservation("open", u.ID, "h", now, time.Hour))
	require.NoError(t, err)
	assert.True(t, ok, "a released key can be reserved again")
}

func TestIdempotencyRepository_ExpiredEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()

	u := testutil.SeedTestUser(t, db, "u@test.com", "U")
	past := time.Now().Add(-48 * time.Hour)

	_, err := repo.Reserve(ctx, reservation("old", u.ID, "h", past, time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Complete(ctx, "old", u.ID, 200, []byte(`{}`)))
	_, err = repo.Reserve(ctx, reservation("stale", u.ID, "h", past, time.Hour))
	require.NoError(t, err)
	_, err = repo.Reserve(ctx, reservation("fresh", u.ID, "h", time.Now(), time.Hour))
	require.NoError(t, err)

	expired, err := repo.Get(ctx, "old", u.ID)
	require.NoError(t, err)
	assert.Nil(t, expired)

	n, err := repo.CleanExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, testutil.CountRows(t, db, "idempotency_cache"))

	taken, err := repo.Reserve(ctx, reservation("old", u.ID, "h2", time.Now(), time.Hour))
	require.NoError(t, err)
	assert.True(t, taken)
}
