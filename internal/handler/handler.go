package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"team-scheduler/internal/bridge"
	"team-scheduler/internal/cache"
	"team-scheduler/internal/middleware"
	"team-scheduler/internal/notify"
	"team-scheduler/internal/participation"
	"team-scheduler/internal/schedule"
	"team-scheduler/internal/store"
)

type Handler struct {
	store    *store.Store
	schedule *schedule.Service
	parts    *participation.Service
	hub      *bridge.Hub
	mailer   *notify.Mailer
	profiles *cache.ProfileCache
	secret   string
}

func New(st *store.Store, sched *schedule.Service, parts *participation.Service,
	hub *bridge.Hub, mailer *notify.Mailer, profiles *cache.ProfileCache, secret string) *Handler {
	return &Handler{
		store:    st,
		schedule: sched,
		parts:    parts,
		hub:      hub,
		mailer:   mailer,
		profiles: profiles,
		secret:   secret,
	}
}

// Routes wires all endpoints. Auth endpoints are rate limited per IP;
// everything else requires a Bearer token.
func (h *Handler) Routes(rl *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rl))
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.secret))

		r.Post("/auth/logout", h.Logout)

		r.Get("/appointments", h.ListAppointments)
		r.Post("/appointments", h.CreateAppointment)
		r.Get("/appointments/{id}", h.GetAppointment)
		r.Put("/appointments/{id}", h.UpdateAppointment)
		r.Delete("/appointments/{id}", h.DeleteAppointment)
		r.Put("/appointments/{id}/attendees", h.ReconcileAttendees)
		r.Get("/appointments/{id}/participation", h.ParticipationState)
		r.Post("/appointments/{id}/invite", h.Invite)
		r.Post("/appointments/{id}/request", h.Request)

		r.Post("/attendees/{id}/accept", h.Accept)
		r.Post("/attendees/{id}/decline", h.Decline)
		r.Post("/attendees/{id}/approve", h.Approve)
		r.Post("/attendees/{id}/deny", h.Deny)
		r.Delete("/attendees/{id}", h.Cancel)

		r.Get("/views", h.AllViews)
		r.Get("/views/invitations", h.InvitationsView)
		r.Get("/views/approvals", h.ApprovalsView)
		r.Get("/views/sent", h.SentView)
		r.Get("/views/history", h.HistoryView)

		r.Get("/locations", h.Locations)
		r.Get("/ws", h.WebSocket)
	})

	return r
}
