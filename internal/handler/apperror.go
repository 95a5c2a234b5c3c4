package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrForbidden          = &AppError{http.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action"}
	ErrRateLimited        = &AppError{http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrRecipientNotFound     = &AppError{http.StatusNotFound, "RECIPIENT_NOT_FOUND", "Recipient not found"}
	ErrSelfTarget            = &AppError{http.StatusBadRequest, "SELF_TARGET_NOT_ALLOWED", "You cannot target yourself"}
	ErrMeetupInPast          = &AppError{http.StatusBadRequest, "MEETUP_IN_PAST", "Meetup date has already passed"}
	ErrMeetupResolved        = &AppError{http.StatusBadRequest, "MEETUP_ALREADY_RESOLVED", "Meetup has already been answered"}
	ErrEmailTaken            = &AppError{http.StatusConflict, "EMAIL_TAKEN", "Email is already registered"}
	ErrAdminRequired         = &AppError{http.StatusForbidden, "ADMIN_REQUIRED", "Administrator access required"}
	ErrAdminProtected        = &AppError{http.StatusForbidden, "ADMIN_PROTECTED", "Administrator accounts cannot be deleted"}
	ErrAlreadyAdmin          = &AppError{http.StatusBadRequest, "ALREADY_ADMIN", "User is already an administrator"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrIdempotencyInProgress = &AppError{http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this idempotency key is still being processed"}
)
