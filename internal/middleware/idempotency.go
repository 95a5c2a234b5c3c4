package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meethere/meethere-api/internal/auth"
	"github.com/meethere/meethere-api/internal/handler"
	"github.com/meethere/meethere-api/internal/logging"
	"github.com/meethere/meethere-api/internal/repository"
)

type idempotencyRepository interface {
	Reserve(ctx context.Context, entry *repository.IdempotencyCacheEntry) (bool, error)
	Get(ctx context.Context, key string, userID int64) (*repository.IdempotencyCacheEntry, error)
	Complete(ctx context.Context, key string, userID int64, statusCode int, body []byte) error
	Release(ctx context.Context, key string, userID int64) error
}

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour
)

// Idempotency replays the stored response when a client retries a write with
// the same Idempotency-Key. Requests without the header pass straight through.
// The key is reserved before the handler runs, so a duplicate arriving while
// the first is in flight gets 409 instead of a second write. Server errors and
// panics release the key so a retry can still succeed.
func Idempotency(repo idempotencyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(idempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			reqHash := computeHash(r.Method, r.URL.Path, body)

			now := time.Now().UTC()
			reserved, err := repo.Reserve(r.Context(), &repository.IdempotencyCacheEntry{
				Key:         key,
				UserID:      userID,
				RequestHash: reqHash,
				CreatedAt:   now,
				ExpiresAt:   now.Add(idempotencyTTL),
			})
			if err != nil {
				log := logging.FromContext(r.Context())
				log.Error("idempotency key reservation failed", "error", err, "idempotency_key", key)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}
			if !reserved {
				replayIdempotent(w, r, repo, key, userID, reqHash)
				return
			}

			completed := false
			defer func() {
				if completed {
					return
				}
				if err := repo.Release(context.WithoutCancel(r.Context()), key, userID); err != nil {
					log := logging.FromContext(r.Context())
					log.Error("idempotency key release failed", "error", err, "idempotency_key", key)
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode >= http.StatusInternalServerError {
				return
			}

			if err := repo.Complete(r.Context(), key, userID, rec.statusCode, rec.body.Bytes()); err != nil {
				log := logging.FromContext(r.Context())
				log.Error("idempotency cache store failed", "error", err, "idempotency_key", key)
				return
			}
			completed = true
		})
	}
}

func replayIdempotent(w http.ResponseWriter, r *http.Request, repo idempotencyRepository, key string, userID int64, reqHash string) {
	cached, err := repo.Get(r.Context(), key, userID)
	if err != nil {
		log := logging.FromContext(r.Context())
		log.Error("idempotency cache lookup failed", "error", err, "idempotency_key", key)
		handler.RespondAppError(w, handler.ErrInternalError, nil)
		return
	}

	switch {
	case cached == nil:
		// The holder was released between Reserve and Get.
		handler.RespondAppError(w, handler.ErrIdempotencyInProgress, nil)
	case cached.RequestHash != reqHash:
		handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
	case cached.Pending():
		handler.RespondAppError(w, handler.ErrIdempotencyInProgress, nil)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Idempotent-Replayed", "true")
		w.WriteHeader(cached.StatusCode)
		if _, err := w.Write(cached.ResponseBody); err != nil {
			log := logging.FromContext(r.Context())
			log.Error("failed to write idempotent replay", "error", err, "idempotency_key", key)
		}
	}
}

func computeHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return fmt.Sprintf("%x", h.Sum(nil))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
