package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/meethere/meethere-api/internal/auth"
	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/handler"
	"github.com/meethere/meethere-api/internal/logging"
)

func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithUserID(r.Context(), claims.UserID)
			ctx = logging.With(ctx, "user_id", claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type adminLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// RequireAdmin must run after Auth. The admin flag is read from storage on
// every request so a promotion or demotion applies without a new token.
func RequireAdmin(users adminLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			u, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					handler.RespondAppError(w, handler.ErrInvalidToken, nil)
					return
				}
				logging.FromContext(r.Context()).Error("admin lookup failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}
			if !u.IsAdmin {
				handler.RespondAppError(w, handler.ErrAdminRequired, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
