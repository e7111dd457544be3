package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nestpoint/internal/directory"
	"nestpoint/internal/handler"
	"nestpoint/internal/media"
	"nestpoint/internal/middleware"
	"nestpoint/internal/store"
	"nestpoint/internal/table"
)

type Server struct {
	dir         *directory.Directory
	accountH    *handler.AccountHandler
	spaceH      *handler.SpaceHandler
	summaryH    *handler.SummaryHandler
	calendarH   *handler.CalendarHandler
	workOrderH  *handler.WorkOrderHandler
	groceryH    *handler.GroceryHandler
	feedH       *handler.FeedHandler
	mediaH      *handler.MediaHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New wires stores and handlers over the shared entity table store.
// mediaSvc may be nil when object storage is not configured.
func New(db *sql.DB, mediaSvc *media.Service, adminCode string, logger *slog.Logger) *Server {
	tables := table.New(db)
	dir := directory.New(tables)

	calendarStore := store.NewCalendarStore(tables)
	workOrderStore := store.NewWorkOrderStore(tables)
	groceryStore := store.NewGroceryStore(tables)
	postStore := store.NewPostStore(tables)

	return &Server{
		dir:         dir,
		accountH:    handler.NewAccountHandler(dir, logger.With("component", "account")),
		spaceH:      handler.NewSpaceHandler(dir, adminCode, logger.With("component", "space")),
		summaryH:    handler.NewSummaryHandler(dir, calendarStore, workOrderStore, groceryStore, postStore, logger.With("component", "summary")),
		calendarH:   handler.NewCalendarHandler(calendarStore, logger.With("component", "calendar")),
		workOrderH:  handler.NewWorkOrderHandler(workOrderStore, logger.With("component", "workorder")),
		groceryH:    handler.NewGroceryHandler(groceryStore, logger.With("component", "grocery")),
		feedH:       handler.NewFeedHandler(postStore, logger.With("component", "feed")),
		mediaH:      handler.NewMediaHandler(mediaSvc, logger.With("component", "media")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Router layers three muxes: public, authenticated, and space-scoped.
// Everything behind the space mux has a confirmed membership in the caller's
// active space before its handler runs.
func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Space-scoped routes — active-space membership enforced by middleware
	spaceMux := http.NewServeMux()
	spaceMux.HandleFunc("GET /spaces/members", s.spaceH.Members)
	spaceMux.HandleFunc("POST /spaces/invite", s.spaceH.Invite)
	spaceMux.HandleFunc("GET /summary", s.summaryH.Dashboard)

	spaceMux.HandleFunc("GET /calendar", s.calendarH.List)
	spaceMux.HandleFunc("POST /calendar", s.calendarH.Create)
	spaceMux.HandleFunc("DELETE /calendar/{id}", s.calendarH.Delete)

	spaceMux.HandleFunc("GET /workorders", s.workOrderH.List)
	spaceMux.HandleFunc("POST /workorders", s.workOrderH.Create)
	spaceMux.HandleFunc("PATCH /workorders/{id}", s.workOrderH.UpdateStatus)
	spaceMux.HandleFunc("DELETE /workorders/{id}", s.workOrderH.Delete)

	spaceMux.HandleFunc("GET /grocery", s.groceryH.List)
	spaceMux.HandleFunc("POST /grocery", s.groceryH.Create)
	spaceMux.HandleFunc("PATCH /grocery/{id}", s.groceryH.SetPurchased)
	spaceMux.HandleFunc("DELETE /grocery/{id}", s.groceryH.Delete)

	spaceMux.HandleFunc("GET /feed", s.feedH.List)
	spaceMux.HandleFunc("POST /feed", s.feedH.Create)
	spaceMux.HandleFunc("DELETE /feed/{id}", s.feedH.Delete)

	spaceMux.HandleFunc("POST /uploads/sas", s.mediaH.UploadLinks)

	// Authenticated routes that work without an active space
	authedMux := http.NewServeMux()
	authedMux.HandleFunc("GET /me", s.accountH.Me)
	authedMux.HandleFunc("GET /spaces", s.spaceH.List)
	authedMux.HandleFunc("POST /spaces", s.spaceH.Create)
	authedMux.HandleFunc("POST /spaces/select", s.spaceH.Select)
	authedMux.Handle("POST /spaces/redeem", s.rateLimitedHandler(s.spaceH.Redeem))

	spaceMiddleware := middleware.RequireSpace(s.dir)
	authedMux.Handle("/", spaceMiddleware(spaceMux))

	authMiddleware := middleware.RequireAuth()
	outerMux.Handle("/", authMiddleware(authedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// rateLimitedHandler guards invite redemption against invite-code guessing.
func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.Handler {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	return middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)(h)
}
