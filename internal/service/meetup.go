package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/logging"
)

type ProposeMeetupRequest struct {
	ReceiverID int64
	Date       time.Time
	Location   string
}

// MeetupService owns creation and status transitions of meetups.
type MeetupService struct {
	meetups meetupRepository
	users   userLookup
	now     func() time.Time
}

func NewMeetupService(meetups meetupRepository, users userLookup) *MeetupService {
	return &MeetupService{
		meetups: meetups,
		users:   users,
		now:     time.Now,
	}
}

func (s *MeetupService) Propose(ctx context.Context, initiatorID int64, req ProposeMeetupRequest) (*domain.Meetup, error) {
	location := strings.TrimSpace(req.Location)

	var verr domain.ValidationError
	if req.ReceiverID <= 0 {
		verr.Add("receiver_id", "required")
	}
	if req.Date.IsZero() {
		verr.Add("date", "required")
	} else if !req.Date.After(s.now()) {
		verr.Add("date", "must be in the future")
	}
	switch n := utf8.RuneCountInString(location); {
	case n == 0:
		verr.Add("location", "required")
	case n > domain.MaxLocationLength:
		verr.Add("location", fmt.Sprintf("must be at most %d characters", domain.MaxLocationLength))
	}
	if err := verr.Err(); err != nil {
		return nil, fmt.Errorf("Propose: %w", err)
	}

	if req.ReceiverID == initiatorID {
		return nil, fmt.Errorf("Propose: %w", domain.ErrSelfTarget)
	}

	if _, err := s.users.GetSummary(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Propose: %w", domain.ErrRecipientNotFound)
		}
		return nil, fmt.Errorf("Propose: %w", err)
	}

	m := &domain.Meetup{
		InitiatorID: initiatorID,
		ReceiverID:  req.ReceiverID,
		Date:        req.Date.UTC(),
		Location:    location,
		Status:      domain.MeetupStatusPending,
	}
	if err := s.meetups.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("Propose: %w", err)
	}

	logging.FromContext(ctx).Info("meetup proposed",
		"meetup_id", m.ID,
		"receiver_id", m.ReceiverID,
		"date", m.Date,
	)

	created, err := s.meetups.GetByID(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("Propose: %w", err)
	}
	return created, nil
}

func (s *MeetupService) ListForUser(ctx context.Context, userID int64) (domain.MeetupSchedule, error) {
	meetups, err := s.meetups.ListByParticipant(ctx, userID)
	if err != nil {
		return domain.MeetupSchedule{}, fmt.Errorf("ListForUser: %w", err)
	}
	return domain.PartitionMeetups(meetups, userID, s.now()), nil
}

// UpdateStatus lets the receiver accept or decline a pending meetup whose
// date has not passed yet. A lapsed meetup is read-only for everyone.
func (s *MeetupService) UpdateStatus(ctx context.Context, meetupID, requesterID int64, status domain.MeetupStatus) (*domain.Meetup, error) {
	if !status.IsResolution() {
		verr := &domain.ValidationError{}
		verr.Add("status", "must be accepted or declined")
		return nil, fmt.Errorf("UpdateStatus: %w", verr)
	}

	m, err := s.meetups.GetByID(ctx, meetupID)
	if err != nil {
		return nil, fmt.Errorf("UpdateStatus: %w", err)
	}
	if m.IsPast(s.now()) {
		return nil, fmt.Errorf("UpdateStatus: %w", domain.ErrMeetupInPast)
	}
	if m.ReceiverID != requesterID {
		return nil, fmt.Errorf("UpdateStatus: %w", domain.ErrForbidden)
	}
	if m.Status != domain.MeetupStatusPending {
		return nil, fmt.Errorf("UpdateStatus: %w", domain.ErrMeetupResolved)
	}

	if err := s.meetups.UpdateStatus(ctx, meetupID, domain.MeetupStatusPending, status); err != nil {
		return nil, fmt.Errorf("UpdateStatus: %w", err)
	}

	logging.FromContext(ctx).Info("meetup status updated",
		"meetup_id", meetupID,
		"status", status,
	)

	updated, err := s.meetups.GetByID(ctx, meetupID)
	if err != nil {
		return nil, fmt.Errorf("UpdateStatus: %w", err)
	}
	return updated, nil
}
