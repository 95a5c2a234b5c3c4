package domain

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

const (
	MinAge       = 18
	MaxAge       = 100
	MaxBioLength = 1000
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Age          int
	Gender       Gender
	Location     string
	Bio          string
	AvatarURL    string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

// UserSummary is the public identity shown next to messages and meetups.
type UserSummary struct {
	ID        int64
	Name      string
	AvatarURL string
}

type UserFilter struct {
	ExcludeID int64
	Gender    *Gender
	MinAge    *int
	MaxAge    *int
	Location  string
}

type UserStats struct {
	User             User
	SentMessages     int
	ReceivedMessages int
	SentMeetups      int
	ReceivedMeetups  int
}
