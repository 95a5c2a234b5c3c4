package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/logging"
	"github.com/meethere/meethere-api/internal/service"
)

type meetupService interface {
	Propose(ctx context.Context, initiatorID int64, req service.ProposeMeetupRequest) (*domain.Meetup, error)
	ListForUser(ctx context.Context, userID int64) (domain.MeetupSchedule, error)
	UpdateStatus(ctx context.Context, meetupID, requesterID int64, status domain.MeetupStatus) (*domain.Meetup, error)
}

type MeetupHandler struct {
	meetups meetupService
}

func NewMeetupHandler(meetups meetupService) *MeetupHandler {
	return &MeetupHandler{meetups: meetups}
}

type proposeMeetupRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	Date       string `json:"date"`
	Location   string `json:"location"`
}

func (r proposeMeetupRequest) Validate() (time.Time, []FieldError) {
	var (
		errs []FieldError
		date time.Time
	)
	if r.ReceiverID <= 0 {
		errs = append(errs, FieldError{Field: "receiver_id", Message: "required"})
	}
	if r.Date == "" {
		errs = append(errs, FieldError{Field: "date", Message: "required"})
	} else {
		d, err := parseMeetupDate(r.Date)
		if err != nil {
			errs = append(errs, FieldError{Field: "date", Message: "must be an ISO 8601 timestamp"})
		}
		date = d
	}
	return date, errs
}

// zonelessLayouts are what a browser datetime-local input submits.
var zonelessLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}

// parseMeetupDate takes RFC 3339, or a zoneless local timestamp read as UTC.
func parseMeetupDate(s string) (time.Time, error) {
	d, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return d, nil
	}
	for _, layout := range zonelessLayouts {
		if d, lerr := time.ParseInLocation(layout, s, time.UTC); lerr == nil {
			return d, nil
		}
	}
	return time.Time{}, err
}

func (h *MeetupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req proposeMeetupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	date, fields := req.Validate()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	m, err := h.meetups.Propose(r.Context(), userID, service.ProposeMeetupRequest{
		ReceiverID: req.ReceiverID,
		Date:       date,
		Location:   req.Location,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to propose meetup", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toMeetupDTO(m))
}

func (h *MeetupHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	sched, err := h.meetups.ListForUser(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list meetups", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, scheduleDTO{
		Outgoing: toMeetupDTOs(sched.Outgoing),
		Incoming: toMeetupDTOs(sched.Incoming),
		Past:     toMeetupDTOs(sched.Past),
	})
}

type updateMeetupStatusRequest struct {
	Status string `json:"status"`
}

func (h *MeetupHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	meetupID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req updateMeetupStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		RespondValidationError(w, []FieldError{{Field: "status", Message: "required"}})
		return
	}

	m, err := h.meetups.UpdateStatus(r.Context(), meetupID, userID, domain.MeetupStatus(req.Status))
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to update meetup status", "meetup_id", meetupID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toMeetupDTO(m))
}
