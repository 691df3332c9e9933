package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mjholt/crewdeck/internal/channel"
	"github.com/mjholt/crewdeck/internal/handler"
	"github.com/mjholt/crewdeck/internal/logparse"
	"github.com/mjholt/crewdeck/internal/middleware"
	"github.com/mjholt/crewdeck/internal/store"
	"github.com/mjholt/crewdeck/internal/tag"
	"github.com/mjholt/crewdeck/internal/unread"
	ws "github.com/mjholt/crewdeck/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	userH         *handler.UserHandler
	projectH      *handler.ProjectHandler
	scheduleItemH *handler.ScheduleItemHandler
	messageH      *handler.MessageHandler
	channelH      *handler.ChannelHandler
	unreadH       *handler.UnreadHandler
	dailyLogH     *handler.DailyLogHandler
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, parser *logparse.Service, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	projectStore := store.NewProjectStore(db)
	itemStore := store.NewScheduleItemStore(db)
	messageStore := store.NewMessageStore(db)
	readStore := store.NewReadStore(db)
	logStore := store.NewDailyLogStore(db)

	registry := channel.NewRegistry()
	detector := tag.NewDetector()
	calculator := unread.NewCalculator(messageStore, readStore, projectStore, itemStore, registry, detector)

	messageH := handler.NewMessageHandler(messageStore, projectStore, detector, hub, logger.With("component", "message"))

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		userH:         handler.NewUserHandler(userStore, logger.With("component", "user")),
		projectH:      handler.NewProjectHandler(projectStore, hub, logger.With("component", "project")),
		scheduleItemH: handler.NewScheduleItemHandler(itemStore, projectStore, hub, logger.With("component", "schedule")),
		messageH:      messageH,
		channelH:      handler.NewChannelHandler(registry, messageStore, calculator, messageH, logger.With("component", "channel")),
		unreadH:       handler.NewUnreadHandler(calculator, readStore, registry, logger.With("component", "unread")),
		dailyLogH:     handler.NewDailyLogHandler(logStore, itemStore, projectStore, parser, hub, logger.With("component", "daily_log")),
		sessionStore:  sessionStore,
		userStore:     userStore,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// UserStore returns the user store for first-run bootstrap.
func (s *Server) UserStore() *store.UserStore {
	return s.userStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// User management (admin only for create)
	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.Handle("POST /api/users", middleware.RequireAdmin(http.HandlerFunc(s.userH.Create)))

	// Project API routes
	mux.HandleFunc("GET /api/projects", s.projectH.List)
	mux.HandleFunc("POST /api/projects", s.projectH.Create)
	mux.HandleFunc("GET /api/projects/{id}", s.projectH.Get)
	mux.HandleFunc("PUT /api/projects/{id}", s.projectH.Update)

	// Schedule tracker API routes
	mux.HandleFunc("GET /api/projects/{id}/schedule-items", s.scheduleItemH.List)
	mux.HandleFunc("POST /api/projects/{id}/schedule-items", s.scheduleItemH.Create)
	mux.HandleFunc("PUT /api/schedule-items/{id}", s.scheduleItemH.Update)
	mux.HandleFunc("DELETE /api/schedule-items/{id}", s.scheduleItemH.Delete)

	// Messaging API routes
	mux.HandleFunc("GET /api/projects/{id}/messages", s.messageH.List)
	mux.HandleFunc("POST /api/projects/{id}/messages", s.messageH.Create)

	// Channel API routes
	mux.HandleFunc("GET /api/channels", s.channelH.List)
	mux.HandleFunc("GET /api/channels/{channel_id}", s.channelH.Get)
	mux.HandleFunc("GET /api/projects/{id}/channels/{channel_id}/messages", s.channelH.Messages)

	// Unread API routes
	mux.HandleFunc("GET /api/projects/{id}/unread", s.unreadH.Thread)
	mux.HandleFunc("GET /api/projects/{id}/unread/channels", s.unreadH.Channels)
	mux.HandleFunc("GET /api/unread/total", s.unreadH.Total)
	mux.HandleFunc("POST /api/projects/{id}/read", s.unreadH.MarkThreadRead)
	mux.HandleFunc("POST /api/projects/{id}/channels/{channel_id}/read", s.unreadH.MarkChannelRead)

	// Daily log API routes
	mux.HandleFunc("GET /api/projects/{id}/daily-logs", s.dailyLogH.List)
	mux.HandleFunc("GET /api/projects/{id}/daily-logs/{date}", s.dailyLogH.Get)
	mux.HandleFunc("PUT /api/projects/{id}/daily-logs/{date}", s.dailyLogH.Upsert)
	mux.HandleFunc("POST /api/projects/{id}/daily-logs/{date}/parse", s.dailyLogH.Parse)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handle(s.hub))
}
