package handler

import (
	"time"

	"github.com/meethere/meethere-api/internal/domain"
)

type summaryDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func toSummaryDTO(s domain.UserSummary) summaryDTO {
	return summaryDTO{ID: s.ID, Name: s.Name, AvatarURL: s.AvatarURL}
}

// userDTO never carries the password hash. Email is only set for the
// account owner and administrators.
type userDTO struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Location  string    `json:"location"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserDTO(u *domain.User, withEmail bool) userDTO {
	dto := userDTO{
		ID:        u.ID,
		Name:      u.Name,
		Age:       u.Age,
		Gender:    string(u.Gender),
		Location:  u.Location,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
	if withEmail {
		dto.Email = u.Email
	}
	return dto
}

type messageDTO struct {
	ID         int64      `json:"id"`
	SenderID   int64      `json:"sender_id"`
	ReceiverID int64      `json:"receiver_id"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	Sender     summaryDTO `json:"sender"`
	Receiver   summaryDTO `json:"receiver"`
}

func toMessageDTO(m *domain.Message) messageDTO {
	return messageDTO{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
		Sender:     toSummaryDTO(m.Sender),
		Receiver:   toSummaryDTO(m.Receiver),
	}
}

func toMessageDTOs(msgs []domain.Message) []messageDTO {
	out := make([]messageDTO, len(msgs))
	for i := range msgs {
		out[i] = toMessageDTO(&msgs[i])
	}
	return out
}

// conversationDTO's last message omits the summaries: the partner is
// already spelled out next to it.
type conversationDTO struct {
	Partner     summaryDTO      `json:"partner"`
	LastMessage *lastMessageDTO `json:"last_message"`
}

type lastMessageDTO struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func toConversationDTOs(convs []domain.Conversation) []conversationDTO {
	out := make([]conversationDTO, len(convs))
	for i, c := range convs {
		out[i].Partner = toSummaryDTO(c.Partner)
		if m := c.LastMessage; m != nil {
			out[i].LastMessage = &lastMessageDTO{
				ID:         m.ID,
				SenderID:   m.SenderID,
				ReceiverID: m.ReceiverID,
				Content:    m.Content,
				CreatedAt:  m.CreatedAt,
			}
		}
	}
	return out
}

type meetupDTO struct {
	ID          int64      `json:"id"`
	InitiatorID int64      `json:"initiator_id"`
	ReceiverID  int64      `json:"receiver_id"`
	Date        time.Time  `json:"date"`
	Location    string     `json:"location"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Initiator   summaryDTO `json:"initiator"`
	Receiver    summaryDTO `json:"receiver"`
}

func toMeetupDTO(m *domain.Meetup) meetupDTO {
	return meetupDTO{
		ID:          m.ID,
		InitiatorID: m.InitiatorID,
		ReceiverID:  m.ReceiverID,
		Date:        m.Date,
		Location:    m.Location,
		Status:      string(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Initiator:   toSummaryDTO(m.Initiator),
		Receiver:    toSummaryDTO(m.Receiver),
	}
}

func toMeetupDTOs(ms []domain.Meetup) []meetupDTO {
	out := make([]meetupDTO, len(ms))
	for i := range ms {
		out[i] = toMeetupDTO(&ms[i])
	}
	return out
}

type scheduleDTO struct {
	Outgoing []meetupDTO `json:"outgoing"`
	Incoming []meetupDTO `json:"incoming"`
	Past     []meetupDTO `json:"past"`
}

type adminUserDTO struct {
	userDTO
	SentMessages     int `json:"sent_messages"`
	ReceivedMessages int `json:"received_messages"`
	SentMeetups      int `json:"sent_meetups"`
	ReceivedMeetups  int `json:"received_meetups"`
}
