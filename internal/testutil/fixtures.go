package testutil

import (
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/meethere/meethere-api/internal/domain"
)

const TestPassword = "password123"

// UserOption tweaks a seeded user before it is inserted.
type UserOption func(*domain.User)

func WithAge(age int) UserOption {
	return func(u *domain.User) { u.Age = age }
}

func WithGender(g domain.Gender) UserOption {
	return func(u *domain.User) { u.Gender = g }
}

func WithLocation(loc string) UserOption {
	return func(u *domain.User) { u.Location = loc }
}

func AsAdmin() UserOption {
	return func(u *domain.User) { u.IsAdmin = true }
}

func SeedTestUser(t *testing.T, db *sql.DB, email, name string, opts ...UserOption) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Age:          30,
		Gender:       domain.GenderOther,
		Location:     "Lisbon",
	}
	for _, opt := range opts {
		opt(u)
	}

	err = db.QueryRow(
		`INSERT INTO users (email, name, password_hash, age, gender, location, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.Name, u.PasswordHash, u.Age, u.Gender, u.Location, u.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

// SeedMessage inserts a message with an explicit timestamp so ordering tests
// do not depend on wall-clock resolution.
func SeedMessage(t *testing.T, db *sql.DB, senderID, receiverID int64, content string, at time.Time) *domain.Message {
	t.Helper()

	m := &domain.Message{SenderID: senderID, ReceiverID: receiverID, Content: content, CreatedAt: at.UTC()}
	err := db.QueryRow(
		`INSERT INTO messages (sender_id, receiver_id, content, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		m.SenderID, m.ReceiverID, m.Content, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		t.Fatalf("seed message %d->%d: %v", senderID, receiverID, err)
	}
	return m
}

// SeedMeetup bypasses service validation, so past-dated meetups can be set up.
func SeedMeetup(t *testing.T, db *sql.DB, initiatorID, receiverID int64, date time.Time, status domain.MeetupStatus) *domain.Meetup {
	t.Helper()

	m := &domain.Meetup{
		InitiatorID: initiatorID,
		ReceiverID:  receiverID,
		Date:        date.UTC(),
		Location:    "Cafe X",
		Status:      status,
	}
	err := db.QueryRow(
		`INSERT INTO meetups (initiator_id, receiver_id, date, location, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		m.InitiatorID, m.ReceiverID, m.Date, m.Location, m.Status,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		t.Fatalf("seed meetup %d->%d: %v", initiatorID, receiverID, err)
	}
	return m
}

func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}
