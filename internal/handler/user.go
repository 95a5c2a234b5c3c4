package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/logging"
	"github.com/meethere/meethere-api/internal/service"
)

type profileService interface {
	GetProfile(ctx context.Context, id int64) (*domain.User, error)
	Browse(ctx context.Context, f domain.UserFilter) ([]domain.User, error)
	UpdateProfile(ctx context.Context, requesterID, targetID int64, req service.UpdateProfileRequest) (*domain.User, error)
}

type UserHandler struct {
	users profileService
}

func NewUserHandler(users profileService) *UserHandler {
	return &UserHandler{users: users}
}

// List serves GET /users?gender=&min_age=&max_age=&location=.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	filter, fields := parseUserFilter(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}
	filter.ExcludeID = userID

	users, err := h.users.Browse(r.Context(), filter)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to browse users", "error", err)
		RespondDomainError(w, err)
		return
	}

	out := make([]userDTO, len(users))
	for i := range users {
		out[i] = toUserDTO(&users[i], false)
	}
	RespondSuccess(w, http.StatusOK, out)
}

func parseUserFilter(r *http.Request) (domain.UserFilter, []FieldError) {
	q := r.URL.Query()
	var (
		f    domain.UserFilter
		errs []FieldError
	)

	if g := q.Get("gender"); g != "" {
		gender := domain.Gender(g)
		f.Gender = &gender
	}
	for _, p := range []struct {
		name string
		dst  **int
	}{{"min_age", &f.MinAge}, {"max_age", &f.MaxAge}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: p.name, Message: "must be an integer"})
			continue
		}
		*p.dst = &n
	}
	f.Location = q.Get("location")

	return f, errs
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	targetID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	user, err := h.users.GetProfile(r.Context(), targetID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to get user", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toUserDTO(user, user.ID == userID))
}

type updateProfileRequest struct {
	Name      *string `json:"name"`
	Age       *int    `json:"age"`
	Gender    *string `json:"gender"`
	Location  *string `json:"location"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	targetID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	update := service.UpdateProfileRequest{
		Name:      req.Name,
		Age:       req.Age,
		Location:  req.Location,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	}
	if req.Gender != nil {
		g := domain.Gender(*req.Gender)
		update.Gender = &g
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, targetID, update)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to update profile", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toUserDTO(user, true))
}
