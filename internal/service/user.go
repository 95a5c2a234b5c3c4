package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/meethere/meethere-api/internal/auth"
	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/logging"
	"github.com/meethere/meethere-api/internal/sanitize"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer input outright.
	maxPasswordBytes = 72
)

type RegisterRequest struct {
	Email     string
	Password  string
	Name      string
	Age       int
	Gender    domain.Gender
	Location  string
	Bio       string
	AvatarURL string
}

// UpdateProfileRequest carries only the fields the caller wants to change.
type UpdateProfileRequest struct {
	Name      *string
	Age       *int
	Gender    *domain.Gender
	Location  *string
	Bio       *string
	AvatarURL *string
}

type UserService struct {
	users userRepository
}

func NewUserService(users userRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	u := &domain.User{
		Email:     email,
		Name:      sanitize.Text(req.Name),
		Age:       req.Age,
		Gender:    req.Gender,
		Location:  sanitize.Text(req.Location),
		Bio:       sanitize.Text(req.Bio),
		AvatarURL: strings.TrimSpace(req.AvatarURL),
	}

	var verr domain.ValidationError
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		verr.Add("email", "must be a valid email address")
	}
	switch {
	case len(req.Password) < minPasswordLength:
		verr.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	case len(req.Password) > maxPasswordBytes:
		verr.Add("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	validateProfile(&verr, u)
	if err := verr.Err(); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}
	u.PasswordHash = hash

	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	logging.FromContext(ctx).Info("user registered", "user_id", u.ID)
	return u, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Authenticate: %w", domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("Authenticate: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("Authenticate: %w", domain.ErrInvalidCredentials)
	}
	return u, nil
}

func (s *UserService) GetProfile(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}
	return u, nil
}

// Browse lists other users matching f, newest first.
func (s *UserService) Browse(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	var verr domain.ValidationError
	if f.Gender != nil && !f.Gender.IsValid() {
		verr.Add("gender", "must be male, female or other")
	}
	if f.MinAge != nil && f.MaxAge != nil && *f.MinAge > *f.MaxAge {
		verr.Add("min_age", "must not exceed max_age")
	}
	if err := verr.Err(); err != nil {
		return nil, fmt.Errorf("Browse: %w", err)
	}
	f.Location = strings.TrimSpace(f.Location)

	users, err := s.users.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("Browse: %w", err)
	}
	return users, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, requesterID, targetID int64, req UpdateProfileRequest) (*domain.User, error) {
	if requesterID != targetID {
		return nil, fmt.Errorf("UpdateProfile: %w", domain.ErrForbidden)
	}

	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("UpdateProfile: %w", err)
	}

	if req.Name != nil {
		u.Name = sanitize.Text(*req.Name)
	}
	if req.Age != nil {
		u.Age = *req.Age
	}
	if req.Gender != nil {
		u.Gender = *req.Gender
	}
	if req.Location != nil {
		u.Location = sanitize.Text(*req.Location)
	}
	if req.Bio != nil {
		u.Bio = sanitize.Text(*req.Bio)
	}
	if req.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}

	var verr domain.ValidationError
	validateProfile(&verr, u)
	if err := verr.Err(); err != nil {
		return nil, fmt.Errorf("UpdateProfile: %w", err)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("UpdateProfile: %w", err)
	}

	logging.FromContext(ctx).Info("profile updated", "user_id", u.ID)
	return u, nil
}

func validateProfile(verr *domain.ValidationError, u *domain.User) {
	if u.Name == "" {
		verr.Add("name", "required")
	}
	if u.Age < domain.MinAge || u.Age > domain.MaxAge {
		verr.Add("age", fmt.Sprintf("must be between %d and %d", domain.MinAge, domain.MaxAge))
	}
	if !u.Gender.IsValid() {
		verr.Add("gender", "must be male, female or other")
	}
	if u.Location == "" {
		verr.Add("location", "required")
	}
	if utf8.RuneCountInString(u.Bio) > domain.MaxBioLength {
		verr.Add("bio", fmt.Sprintf("must be at most %d characters", domain.MaxBioLength))
	}
	if u.AvatarURL != "" && !isWebURL(u.AvatarURL) {
		verr.Add("avatar_url", "must be an http or https URL")
	}
}

// isWebURL accepts absolute http(s) URLs only, so stored avatars can never
// carry a javascript: or data: scheme.
func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
