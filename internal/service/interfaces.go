package service

import (
	"context"

	"github.com/meethere/meethere-api/internal/domain"
)

type userRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, f domain.UserFilter) ([]domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type userLookup interface {
	GetSummary(ctx context.Context, id int64) (*domain.UserSummary, error)
}

type adminUserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListWithStats(ctx context.Context) ([]domain.UserStats, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
	Delete(ctx context.Context, id int64) error
}

type messageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	ListBetween(ctx context.Context, userA, userB int64) ([]domain.Message, error)
	ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error)
}

type meetupRepository interface {
	Create(ctx context.Context, m *domain.Meetup) error
	GetByID(ctx context.Context, id int64) (*domain.Meetup, error)
	ListByParticipant(ctx context.Context, userID int64) ([]domain.Meetup, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.MeetupStatus) error
}

type idempotencyCleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}
