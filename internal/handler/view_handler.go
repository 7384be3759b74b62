package handler

import (
	"context"
	"net/http"

	"team-scheduler/internal/bridge"
	"team-scheduler/internal/middleware"
	"team-scheduler/internal/model"
	"team-scheduler/internal/view"
)

// snapshot reads the three input sets the aggregators project from.
// Profiles go through the redis cache when one is configured.
func (h *Handler) snapshot(ctx context.Context) (recs []model.AttendeeRecord, apts []model.Appointment, profs []model.Profile, err error) {
	if recs, err = h.store.Attendees(ctx); err != nil {
		return
	}
	if apts, err = h.store.Appointments(ctx); err != nil {
		return
	}
	profs, err = h.profiles.Profiles(ctx, h.store)
	return
}

func (h *Handler) AllViews(w http.ResponseWriter, r *http.Request) {
	me := middleware.UserID(r.Context())
	recs, apts, profs, err := h.snapshot(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bridge.Views{
		Invitations: view.InvitationsToMe(me, recs, apts, profs),
		Approvals:   view.RequestsToApprove(me, recs, apts, profs),
		Sent:        view.SentByMe(me, recs, apts, profs),
		History:     view.History(me, recs, apts, profs),
	})
}

func (h *Handler) InvitationsView(w http.ResponseWriter, r *http.Request) {
	me := middleware.UserID(r.Context())
	recs, apts, profs, err := h.snapshot(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.InvitationsToMe(me, recs, apts, profs))
}

func (h *Handler) ApprovalsView(w http.ResponseWriter, r *http.Request) {
	me := middleware.UserID(r.Context())
	recs, apts, profs, err := h.snapshot(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.RequestsToApprove(me, recs, apts, profs))
}

func (h *Handler) SentView(w http.ResponseWriter, r *http.Request) {
	me := middleware.UserID(r.Context())
	recs, apts, profs, err := h.snapshot(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.SentByMe(me, recs, apts, profs))
}

func (h *Handler) HistoryView(w http.ResponseWriter, r *http.Request) {
	me := middleware.UserID(r.Context())
	recs, apts, profs, err := h.snapshot(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.History(me, recs, apts, profs))
}
