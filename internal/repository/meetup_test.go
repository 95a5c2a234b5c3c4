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

func TestMeetupRepository_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMeetupRepository(db)
	ctx := context.Background()

	alice := testutil.SeedTestUser(t, db, "alice@test.com", "Alice")
	bob := testutil.SeedTestUser(t, db, "bob@test.com", "Bob")
	date := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Microsecond)

	m := &domain.Meetup{InitiatorID: alice.ID, ReceiverID: bob.ID, Date: date, Location: "Cafe X", Status: domain.MeetupStatusPending}
	require.NoError(t, repo.Create(ctx, m))
	assert.NotZero(t, m.ID)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, date.Equal(got.Date))
	assert.Equal(t, "Alice", got.Initiator.Name)
	assert.Equal(t, "Bob", got.Receiver.Name)

	require.NoError(t, repo.UpdateStatus(ctx, m.ID, domain.MeetupStatusPending, domain.MeetupStatusAccepted))
	err = repo.UpdateStatus(ctx, m.ID, domain.MeetupStatusPending, domain.MeetupStatusDeclined)
	require.ErrorIs(t, err, domain.ErrMeetupResolved)

	got, err = repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MeetupStatusAccepted, got.Status)

	_, err = repo.GetByID(ctx, m.ID+1000)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMeetupRepository_ListByParticipant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMeetupRepository(db)
	ctx := context.Background()

	alice := testutil.SeedTestUser(t, db, "alice@test.com", "Alice")
	bob := testutil.SeedTestUser(t, db, "bob@test.com", "Bob")
	carol := testutil.SeedTestUser(t, db, "carol@test.com", "Carol")
	now := time.Now()

	late := testutil.SeedMeetup(t, db, alice.ID, bob.ID, now.Add(72*time.Hour), domain.MeetupStatusPending)
	past := testutil.SeedMeetup(t, db, carol.ID, alice.ID, now.Add(-24*time.Hour), domain.MeetupStatusDeclined)
	soon := testutil.SeedMeetup(t, db, bob.ID, alice.ID, now.Add(time.Hour), domain.MeetupStatusPending)
	testutil.SeedMeetup(t, db, bob.ID, carol.ID, now.Add(time.Hour), domain.MeetupStatusPending)

	list, err := repo.ListByParticipant(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{past.ID, soon.ID, late.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "Carol", list[0].Initiator.Name)
}

func TestMeetupRepository_RejectsSelfMeetupInSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewMeetupRepository(db)

	alice := testutil.SeedTestUser(t, db, "alice@test.com", "Alice")

	err := repo.Create(context.Background(), &domain.Meetup{
		InitiatorID: alice.ID, ReceiverID: alice.ID, Date: time.Now().Add(time.Hour), Location: "x", Status: domain.MeetupStatusPending,
	})
	require.Error(t, err)
}
