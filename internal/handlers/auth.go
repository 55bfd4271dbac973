package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"curio/internal/flash"
	"curio/internal/identity"
	"curio/internal/models"
)

// IdentityService is the slice of the identity service the auth handlers
// need.
type IdentityService interface {
	Login(ctx context.Context, w http.ResponseWriter, r *http.Request, rawToken string) (identity.Status, error)
	Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) (identity.Status, error)
}

// Auth groups the federated login handlers. The client posts the provider's
// ID token here after its own sign-in flow; the response body is a JSON
// string describing the outcome.
type Auth struct {
	svc IdentityService
}

// NewAuth creates the auth handler group.
func NewAuth(svc IdentityService) *Auth {
	return &Auth{svc: svc}
}

// GConnect handles POST /gconnect: verifies the posted ID token and binds
// the session. Both a fresh login and a redundant re-login by the same
// subject succeed.
func (a *Auth) GConnect(w http.ResponseWriter, r *http.Request) {
	rawToken := r.FormValue("id_token")
	if rawToken == "" {
		writeStatus(w, http.StatusBadRequest, "Missing id_token.")
		return
	}

	status, err := a.svc.Login(r.Context(), w, r, rawToken)
	if err != nil {
		if errors.Is(err, models.ErrWrongIssuer) {
			writeStatus(w, http.StatusUnauthorized, "Wrong issuer.")
			return
		}
		slog.Warn("login rejected", "error", err)
		writeStatus(w, http.StatusUnauthorized, "Token verification failed.")
		return
	}

	if status == identity.StatusLoggedIn {
		flash.Set(w, "You are now logged in")
	}
	writeStatus(w, http.StatusOK, string(status))
}

// GDisconnect handles GET /gdisconnect: clears the session. Disconnecting
// while anonymous is a distinct no-op success.
func (a *Auth) GDisconnect(w http.ResponseWriter, r *http.Request) {
	status, err := a.svc.Logout(r.Context(), w, r)
	if err != nil {
		slog.Error("logout failed", "error", err)
		writeStatus(w, http.StatusInternalServerError, "Failed to disconnect.")
		return
	}

	if status == identity.StatusLoggedOut {
		flash.Set(w, "You have been logged out")
	}
	writeStatus(w, http.StatusOK, string(status))
}

// writeStatus sends a bare JSON string, the wire shape the login widget
// expects.
func writeStatus(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(msg)
}
