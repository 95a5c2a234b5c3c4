package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meethere/meethere-api/internal/domain"
)

func newAdminTest(t *testing.T) (*AdminService, *fakeUsers) {
	t.Helper()
	admin := seedUser(1, "root")
	admin.IsAdmin = true
	users := newFakeUsers(admin, seedUser(2, "bob"))
	return NewAdminService(users), users
}

func TestAdminDeleteUser(t *testing.T) {
	svc, users := newAdminTest(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.DeleteUser(ctx, 1), domain.ErrAdminProtected)
	require.ErrorIs(t, svc.DeleteUser(ctx, 99), domain.ErrNotFound)

	require.NoError(t, svc.DeleteUser(ctx, 2))
	_, err := users.GetByID(ctx, 2)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminDeleteUser_PromotedMeanwhile(t *testing.T) {
	svc, users := newAdminTest(t)
	users.promoteOnDelete = true

	err := svc.DeleteUser(context.Background(), 2)

	require.ErrorIs(t, err, domain.ErrAdminProtected)
	u, getErr := users.GetByID(context.Background(), 2)
	require.NoError(t, getErr)
	assert.True(t, u.IsAdmin)
}

func TestAdminPromote(t *testing.T) {
	svc, users := newAdminTest(t)
	ctx := context.Background()

	u, err := svc.Promote(ctx, 2)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	stored, err := users.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)

	_, err = svc.Promote(ctx, 2)
	require.ErrorIs(t, err, domain.ErrAlreadyAdmin)

	_, err = svc.Promote(ctx, 42)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminListUsers(t *testing.T) {
	svc, _ := newAdminTest(t)

	stats, err := svc.ListUsers(context.Background())

	require.NoError(t, err)
	assert.Len(t, stats, 2)
}
