package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cottons-kr/appplechat-api/internal/server/middleware"
	"github.com/cottons-kr/appplechat-api/internal/store"
)

type createTokenRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type createTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// createTokenHandler issues an access token for valid member credentials.
func (a *App) createTokenHandler(w http.ResponseWriter, r *http.Request) {
	var body createTokenRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil || body.ID == "" || body.Password == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	member, err := a.members.Authenticate(r.Context(), body.ID, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrMemberNotFound):
			http.Error(w, "Member not found", http.StatusNotFound)
		case errors.Is(err, store.ErrInvalidPassword):
			http.Error(w, "Invalid password", http.StatusBadRequest)
		default:
			a.logger.Error("Failed to authenticate member", slog.Any("error", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	tokenString, expiresAt, err := a.tokens.Issue(member)
	if err != nil {
		a.logger.Error("Failed to issue access token", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, http.StatusCreated, createTokenResponse{Token: tokenString, ExpiresAt: expiresAt})
}

// meHandler returns the fresh member record behind the presented token.
func (a *App) meHandler(w http.ResponseWriter, r *http.Request) {
	reqMeta, ok := middleware.ReqMetadataFrom(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, http.StatusOK, reqMeta.Member)
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Failed to encode response", slog.Any("error", err))
	}
}
