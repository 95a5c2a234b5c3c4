package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/meethere/meethere-api/internal/domain"
)

var errStoreDown = errors.New("connection refused")

type fakeUsers struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64
	err    error

	// promoteOnDelete flips the admin flag just before Delete runs, like a
	// concurrent promotion landing between read and delete.
	promoteOnDelete bool
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{users: make(map[int64]*domain.User)}
	for _, u := range users {
		f.users[u.ID] = u
		f.nextID = max(f.nextID, u.ID)
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return fmt.Errorf("Create: %w", domain.ErrEmailTaken)
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
}

func (f *fakeUsers) GetSummary(ctx context.Context, id int64) (*domain.UserSummary, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s := u.Summary()
	return &s, nil
}

func (f *fakeUsers) List(_ context.Context, filter domain.UserFilter) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.User{}
	for _, u := range f.users {
		if u.ID == filter.ExcludeID {
			continue
		}
		if filter.Gender != nil && u.Gender != *filter.Gender {
			continue
		}
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b domain.User) int { return int(b.ID - a.ID) })
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[u.ID]; !ok {
		return fmt.Errorf("Update: %w", domain.ErrNotFound)
	}
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeUsers) ListWithStats(_ context.Context) ([]domain.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.UserStats{}
	for _, u := range f.users {
		out = append(out, domain.UserStats{User: *u})
	}
	return out, nil
}

func (f *fakeUsers) SetAdmin(_ context.Context, id int64, isAdmin bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("SetAdmin: %w", domain.ErrNotFound)
	}
	u.IsAdmin = isAdmin
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if ok && f.promoteOnDelete {
		u.IsAdmin = true
	}
	if !ok || u.IsAdmin {
		return fmt.Errorf("Delete: %w", domain.ErrNotFound)
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) summary(id int64) domain.UserSummary {
	return f.users[id].Summary()
}

type fakeMeetups struct {
	users   *fakeUsers
	meetups []domain.Meetup
	nextID  int64
	err     error
	// raceTo, when set, is applied to the stored row just before a
	// conditional status update, simulating a concurrent writer.
	raceTo domain.MeetupStatus
}

func (f *fakeMeetups) Create(_ context.Context, m *domain.Meetup) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	m.ID = f.nextID
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	f.meetups = append(f.meetups, *m)
	return nil
}

func (f *fakeMeetups) GetByID(_ context.Context, id int64) (*domain.Meetup, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.meetups {
		if m.ID == id {
			m.Initiator = f.users.summary(m.InitiatorID)
			m.Receiver = f.users.summary(m.ReceiverID)
			return &m, nil
		}
	}
	return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
}

func (f *fakeMeetups) ListByParticipant(_ context.Context, userID int64) ([]domain.Meetup, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []domain.Meetup{}
	for _, m := range f.meetups {
		if m.InitiatorID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMeetups) UpdateStatus(_ context.Context, id int64, from, to domain.MeetupStatus) error {
	for i := range f.meetups {
		if f.meetups[i].ID != id {
			continue
		}
		if f.raceTo != "" {
			f.meetups[i].Status = f.raceTo
		}
		if f.meetups[i].Status != from {
			return fmt.Errorf("UpdateStatus: %w", domain.ErrMeetupResolved)
		}
		f.meetups[i].Status = to
		return nil
	}
	return fmt.Errorf("UpdateStatus: %w", domain.ErrMeetupResolved)
}

type fakeMessages struct {
	users    *fakeUsers
	messages []domain.Message
	clock    time.Time
	err      error
}

func (f *fakeMessages) Create(_ context.Context, msg *domain.Message) error {
	if f.err != nil {
		return f.err
	}
	f.clock = f.clock.Add(time.Second)
	msg.ID = int64(len(f.messages) + 1)
	msg.CreatedAt = f.clock
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeMessages) annotate(m domain.Message) domain.Message {
	m.Sender = f.users.summary(m.SenderID)
	m.Receiver = f.users.summary(m.ReceiverID)
	return m
}

func (f *fakeMessages) GetByID(_ context.Context, id int64) (*domain.Message, error) {
	for _, m := range f.messages {
		if m.ID == id {
			m = f.annotate(m)
			return &m, nil
		}
	}
	return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
}

func (f *fakeMessages) ListBetween(_ context.Context, a, b int64) ([]domain.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []domain.Message{}
	for _, m := range f.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, f.annotate(m))
		}
	}
	return out, nil
}

// ListConversations walks the log the slow way and returns partners in map
// order, leaving the final ordering to the service.
func (f *fakeMessages) ListConversations(_ context.Context, userID int64) ([]domain.Conversation, error) {
	if f.err != nil {
		return nil, f.err
	}
	latest := make(map[int64]domain.Message)
	for _, m := range f.messages {
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		p := m.PartnerOf(userID)
		if cur, ok := latest[p]; !ok || m.CreatedAt.After(cur.CreatedAt) ||
			(m.CreatedAt.Equal(cur.CreatedAt) && m.ID > cur.ID) {
			latest[p] = m
		}
	}
	out := []domain.Conversation{}
	for p, m := range latest {
		out = append(out, domain.Conversation{Partner: f.users.summary(p), LastMessage: &m})
	}
	return out, nil
}

func seedUser(id int64, name string) *domain.User {
	return &domain.User{
		ID:       id,
		Email:    fmt.Sprintf("%s@example.com", name),
		Name:     name,
		Age:      30,
		Gender:   domain.GenderOther,
		Location: "Lisbon",
	}
}
