package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"team-scheduler/internal/auth"
	"team-scheduler/internal/middleware"
	"team-scheduler/internal/model"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type tokenResponse struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name,omitempty"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad request"})
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "all fields required"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "password too short"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
		return
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		// unique violation = dup email, but don't reveal that
		writeJSON(w, http.StatusConflict, errBody{Error: "registration failed"})
		return
	}

	// display profile, read-only to the scheduling core afterwards
	if err := h.store.InsertProfile(r.Context(), &model.Profile{ID: u.ID, FullName: u.Name}); err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
		return
	}
	h.profiles.Invalidate(r.Context())

	tok, err := auth.MakeToken(u.ID, h.secret)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{UserID: u.ID, Token: tok})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "email and password required"})
		return
	}

	u, err := h.store.UserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeJSON(w, http.StatusUnauthorized, errBody{Error: "invalid credentials"})
		return
	}

	tok, err := auth.MakeToken(u.ID, h.secret)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
		return
	}

	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
		return
	}
	if _, err := h.store.CreateRefreshToken(r.Context(), u.ID, hash, time.Now().Add(refreshTokenTTL)); err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{UserID: u.ID, Name: u.Name, Token: tok, RefreshToken: raw})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil || req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "refresh token required"})
		return
	}

	rt, err := h.store.RefreshTokenByHash(r.Context(), auth.HashRefreshToken(req.RefreshToken))
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		writeJSON(w, http.StatusUnauthorized, errBody{Error: "invalid refresh token"})
		return
	}

	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
		return
	}
	newID := uuid.New().String()
	if err := h.store.RotateRefreshToken(r.Context(), rt.ID, newID, rt.UserID, hash, time.Now().Add(refreshTokenTTL)); err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
		return
	}

	tok, err := auth.MakeToken(rt.UserID, h.secret)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{UserID: rt.UserID, Token: tok, RefreshToken: raw})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	me := middleware.UserID(r.Context())
	if err := h.store.RevokeAllRefreshTokens(r.Context(), me); err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
