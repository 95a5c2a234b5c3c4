package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/meethere/meethere-api/internal/auth"
	"github.com/meethere/meethere-api/internal/handler"
	"github.com/meethere/meethere-api/internal/logging"
)

// Recovery turns a panic into the standard INTERNAL_ERROR envelope. The log
// line names the matched route and, when the request is authenticated, the
// caller, so it belongs inside Logging and, for protected routes, inside Auth.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				attrs := []any{
					slog.Any("error", err),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("route", r.Pattern),
				}
				if id, ok := auth.UserIDFromContext(r.Context()); ok {
					attrs = append(attrs, slog.Int64("caller_id", id))
				}
				attrs = append(attrs, slog.String("stack", string(debug.Stack())))
				logging.FromContext(r.Context()).Error("panic recovered", attrs...)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
