package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/meethere/meethere-api/internal/auth"
)

func callerID(r *http.Request) (int64, *AppError) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return 0, ErrMissingToken
	}
	return id, nil
}

// pathID parses a positive numeric path segment. Anything else cannot name
// an existing row, so it reads as not found.
func pathID(r *http.Request, name string) (int64, *AppError) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrResourceNotFound
	}
	return id, nil
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return false
	}
	return true
}
