package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"team-scheduler/internal/middleware"
	"team-scheduler/internal/schedule"
)

type appointmentRequest struct {
	Title         string   `json:"title"`
	Date          string   `json:"date"` // "2006-01-02"
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	Type          string   `json:"type"`
	Description   string   `json:"description"`
	LocationID    *string  `json:"location_id"`
	LocationText  string   `json:"location_text"`
	OrganizerOnly bool     `json:"organizer_only"`
	AttendeeIDs   []string `json:"attendee_ids"`
}

func (req *appointmentRequest) toInput() (schedule.Input, error) {
	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return schedule.Input{}, err
		}
	}
	return schedule.Input{
		Title:         req.Title,
		Date:          date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Type:          req.Type,
		Description:   req.Description,
		LocationID:    req.LocationID,
		LocationText:  req.LocationText,
		OrganizerOnly: req.OrganizerOnly,
		AttendeeIDs:   req.AttendeeIDs,
	}, nil
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request"})
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad date"})
		return
	}

	apt, err := h.schedule.Create(r.Context(), middleware.UserID(r.Context()), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, apt)
}

func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request"})
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad date"})
		return
	}

	apt, err := h.schedule.Update(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apt)
}

func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	err := h.schedule.Delete(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	apt, err := h.schedule.Get(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apt)
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	apts, err := h.schedule.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apts)
}

func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.schedule.Locations(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locs)
}
