package handler

import (
	"context"
	"net/http"

	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/logging"
)

type adminService interface {
	ListUsers(ctx context.Context) ([]domain.UserStats, error)
	DeleteUser(ctx context.Context, id int64) error
	Promote(ctx context.Context, id int64) (*domain.User, error)
}

type AdminHandler struct {
	admin adminService
}

func NewAdminHandler(admin adminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.ListUsers(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list users", "error", err)
		RespondDomainError(w, err)
		return
	}

	out := make([]adminUserDTO, len(stats))
	for i, s := range stats {
		out[i] = adminUserDTO{
			userDTO:          toUserDTO(&s.User, true),
			SentMessages:     s.SentMessages,
			ReceivedMessages: s.ReceivedMessages,
			SentMeetups:      s.SentMeetups,
			ReceivedMeetups:  s.ReceivedMeetups,
		}
	}
	RespondSuccess(w, http.StatusOK, out)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.admin.DeleteUser(r.Context(), targetID); err != nil {
		logging.FromContext(r.Context()).Warn("failed to delete user", "target_user_id", targetID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]int64{"deleted_id": targetID})
}

func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	targetID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	user, err := h.admin.Promote(r.Context(), targetID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to promote user", "target_user_id", targetID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toUserDTO(user, true))
}
