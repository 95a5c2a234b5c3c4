package domain

import (
	"slices"
	"time"
)

const MaxLocationLength = 200

type MeetupStatus string

const (
	MeetupStatusPending  MeetupStatus = "pending"
	MeetupStatusAccepted MeetupStatus = "accepted"
	MeetupStatusDeclined MeetupStatus = "declined"
)

func (s MeetupStatus) IsValid() bool {
	switch s {
	case MeetupStatusPending, MeetupStatusAccepted, MeetupStatusDeclined:
		return true
	default:
		return false
	}
}

// IsResolution reports whether a receiver may move a pending meetup to s.
func (s MeetupStatus) IsResolution() bool {
	switch s {
	case MeetupStatusAccepted, MeetupStatusDeclined:
		return true
	case MeetupStatusPending:
		return false
	default:
		return false
	}
}

type Meetup struct {
	ID          int64
	InitiatorID int64
	ReceiverID  int64
	Date        time.Time
	Location    string
	Status      MeetupStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Initiator   UserSummary
	Receiver    UserSummary
}

func (m *Meetup) IsPast(now time.Time) bool {
	return m.Date.Before(now)
}

type MeetupSchedule struct {
	Outgoing []Meetup
	Incoming []Meetup
	Past     []Meetup
}

// PartitionMeetups splits userID's meetups into disjoint buckets. A meetup
// whose date is before now lands in Past whatever its status. Each bucket is
// ordered by date ascending; equal dates keep their input order.
func PartitionMeetups(meetups []Meetup, userID int64, now time.Time) MeetupSchedule {
	sorted := slices.Clone(meetups)
	slices.SortStableFunc(sorted, func(a, b Meetup) int {
		return a.Date.Compare(b.Date)
	})

	sched := MeetupSchedule{
		Outgoing: []Meetup{},
		Incoming: []Meetup{},
		Past:     []Meetup{},
	}
	for _, m := range sorted {
		switch {
		case m.IsPast(now):
			sched.Past = append(sched.Past, m)
		case m.InitiatorID == userID:
			sched.Outgoing = append(sched.Outgoing, m)
		default:
			sched.Incoming = append(sched.Incoming, m)
		}
	}
	return sched
}
