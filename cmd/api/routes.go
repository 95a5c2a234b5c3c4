package main

import (
	"database/sql"
	"net/http"

	"github.com/meethere/meethere-api/docs"
	"github.com/meethere/meethere-api/internal/config"
	"github.com/meethere/meethere-api/internal/handler"
	"github.com/meethere/meethere-api/internal/middleware"
	"github.com/meethere/meethere-api/internal/repository"
	"github.com/meethere/meethere-api/internal/service"
)

type application struct {
	cfg         *config.Config
	db          *sql.DB
	users       *repository.UserRepository
	idempotency *repository.IdempotencyRepository
	limiter     *middleware.RateLimiter

	userSvc   *service.UserService
	chatSvc   *service.ChatService
	meetupSvc *service.MeetupService
	adminSvc  *service.AdminService
}

func (app *application) routes() http.Handler {
	authH := handler.NewAuthHandler(app.userSvc, app.cfg.JWTSecret, app.cfg.JWTExpiry)
	userH := handler.NewUserHandler(app.userSvc)
	meetupH := handler.NewMeetupHandler(app.meetupSvc)
	messageH := handler.NewMessageHandler(app.chatSvc)
	adminH := handler.NewAdminHandler(app.adminSvc)
	healthH := handler.NewHealthHandler(app.db)

	requireAuth := middleware.Auth(app.cfg.JWTSecret)
	requireAdmin := middleware.RequireAdmin(app.users)
	rateLimited := middleware.RateLimit(app.limiter)
	idempotent := middleware.Idempotency(app.idempotency)

	// Protected routes recover inside Auth so a panic is logged with its caller.
	authed := func(h http.HandlerFunc) http.Handler { return requireAuth(middleware.Recovery(h)) }
	authedIdempotent := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.Recovery(idempotent(h)))
	}
	admin := func(h http.HandlerFunc) http.Handler { return requireAuth(middleware.Recovery(requireAdmin(h))) }

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", healthH.Liveness)
	mux.HandleFunc("GET /health/ready", healthH.Readiness)
	mux.HandleFunc("GET /docs", handler.ServeDocs("/docs/openapi.yaml"))
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(docs.OpenAPI))

	mux.Handle("POST /api/auth/register", rateLimited(http.HandlerFunc(authH.Register)))
	mux.Handle("POST /api/auth/login", rateLimited(http.HandlerFunc(authH.Login)))
	mux.Handle("GET /api/auth/me", authed(authH.Me))

	mux.Handle("GET /api/users", authed(userH.List))
	mux.Handle("GET /api/users/{id}", authed(userH.GetByID))
	mux.Handle("PUT /api/users/{id}", authed(userH.Update))

	mux.Handle("POST /api/meetups", authedIdempotent(meetupH.Create))
	mux.Handle("GET /api/meetups", authed(meetupH.List))
	mux.Handle("PUT /api/meetups/{id}", authed(meetupH.UpdateStatus))

	mux.Handle("POST /api/messages", authedIdempotent(messageH.Send))
	mux.Handle("GET /api/messages", authed(messageH.Conversations))
	mux.Handle("GET /api/messages/{userId}", authed(messageH.Conversation))

	mux.Handle("GET /api/admin/users", admin(adminH.ListUsers))
	mux.Handle("DELETE /api/admin/users/{id}", admin(adminH.DeleteUser))
	mux.Handle("PUT /api/admin/users/{id}/promote", admin(adminH.Promote))

	var h http.Handler = mux
	h = middleware.Recovery(h)
	h = middleware.Logging(h)
	h = middleware.CORS(app.cfg.CORSAllowedOrigins)(h)
	h = middleware.Tracing(h)
	return h
}
