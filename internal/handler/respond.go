package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"

	"team-scheduler/internal/participation"
	"team-scheduler/internal/schedule"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errBody struct {
	Error string `json:"error"`
}

// writeErr maps the core error taxonomy onto HTTP statuses. Store and
// unknown failures stay opaque to the client.
func writeErr(w http.ResponseWriter, err error) {
	var (
		ve *participation.ValidationError
		ue *participation.UnauthorizedTransitionError
		de *participation.DuplicateParticipationError
		se *participation.StoreError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errBody{Error: ve.Msg})
	case errors.As(err, &ue):
		writeJSON(w, http.StatusForbidden, errBody{Error: ue.Error()})
	case errors.As(err, &de):
		writeJSON(w, http.StatusConflict, errBody{Error: de.Error()})
	case errors.Is(err, schedule.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		writeJSON(w, http.StatusNotFound, errBody{Error: "not found"})
	case errors.As(err, &se):
		log.Printf("handler: %v", err)
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
	default:
		log.Printf("handler: %v", err)
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
