package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"team-scheduler/internal/middleware"
)

type inviteRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decode(r, &req); err != nil || req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "user_id required"})
		return
	}

	me := middleware.UserID(r.Context())
	aptID := chi.URLParam(r, "id")
	rec, err := h.parts.Invite(r.Context(), me, aptID, req.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.mailInvitation(r, aptID, req.UserID, me)
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	rec, err := h.parts.Request(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	if _, err := h.parts.Accept(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	if _, err := h.parts.Decline(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	recID := chi.URLParam(r, "id")
	changed, err := h.parts.Approve(r.Context(), middleware.UserID(r.Context()), recID)
	if err != nil {
		writeErr(w, err)
		return
	}
	// re-applying a stored approval is a no-op; don't mail again
	if changed {
		h.mailApproval(r, recID)
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) Deny(w http.ResponseWriter, r *http.Request) {
	if _, err := h.parts.Deny(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.parts.Cancel(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ParticipationState reports the caller's relationship to one appointment
// (organizer, invited, requested, member, declined or none).
func (h *Handler) ParticipationState(w http.ResponseWriter, r *http.Request) {
	st, err := h.parts.StateOf(r.Context(), chi.URLParam(r, "id"), middleware.UserID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": st})
}

type reconcileRequest struct {
	AttendeeIDs []string `json:"attendee_ids"`
}

func (h *Handler) ReconcileAttendees(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request"})
		return
	}
	err := h.parts.Reconcile(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req.AttendeeIDs)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// mailInvitation is best effort; a failed lookup just means no email.
func (h *Handler) mailInvitation(r *http.Request, aptID, inviteeID, organizerID string) {
	if h.mailer == nil {
		return
	}
	invitee, err := h.store.UserByID(r.Context(), inviteeID)
	if err != nil {
		return
	}
	organizer, err := h.store.UserByID(r.Context(), organizerID)
	if err != nil {
		return
	}
	apt, err := h.store.Appointment(r.Context(), aptID)
	if err != nil {
		return
	}
	h.mailer.InvitationCreated(invitee.Email, invitee.Name, organizer.Name, apt.Title)
}

func (h *Handler) mailApproval(r *http.Request, recordID string) {
	if h.mailer == nil {
		return
	}
	rec, err := h.store.AttendeeByID(r.Context(), recordID)
	if err != nil {
		return
	}
	requester, err := h.store.UserByID(r.Context(), rec.UserID)
	if err != nil {
		return
	}
	apt, err := h.store.Appointment(r.Context(), rec.AppointmentID)
	if err != nil {
		return
	}
	h.mailer.RequestApproved(requester.Email, requester.Name, apt.Title)
}
