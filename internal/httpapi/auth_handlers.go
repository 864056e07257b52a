package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"civicaid.org/internal/auth"
	"civicaid.org/internal/obs"
)

const (
	refreshCookieName = "civicaid_refresh"

	// Path-scoped so the browser only attaches the cookie to auth endpoints.
	refreshCookiePath = "/v1/auth"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	User        auth.UserView `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if msg, ok := validateCredentialsInput(req); !ok {
		writeError(w, r, http.StatusBadRequest, "invalid_input", msg)
		return
	}

	user, err := a.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	obs.ObserveRegistration()
	w.Header().Set("Location", "/v1/admin/users/"+user.ID)
	writeJSON(w, http.StatusCreated, user.View())
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	session, err := a.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAccountDeactivated):
			obs.ObserveLogin("deactivated")
		case errors.Is(err, auth.ErrInvalidCredentials):
			obs.ObserveLogin("invalid")
		}
		handleAuthError(w, r, err)
		return
	}
	obs.ObserveLogin("ok")

	a.setRefreshCookie(w, session.RefreshToken, session.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: session.AccessToken,
		ExpiresAt:   session.AccessExpiresAt,
		User:        session.User.View(),
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	token := a.presentedRefreshToken(r)

	access, expiresAt, err := a.svc.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			obs.ObserveRefresh("invalid")
		}
		handleAuthError(w, r, err)
		return
	}
	obs.ObserveRefresh("ok")

	// The refresh cookie is deliberately not re-issued here.
	writeJSON(w, http.StatusOK, refreshResponse{
		AccessToken: access,
		ExpiresAt:   expiresAt,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	token := a.presentedRefreshToken(r)
	if err := a.svc.Logout(r.Context(), token); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "logout failed")
		return
	}
	a.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		unauthenticated(w, r, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":    claims.Subject,
		"role":       claims.Role,
		"expires_at": claims.ExpiresAt.Time,
	})
}

// presentedRefreshToken prefers the cookie channel; a JSON body value serves
// non-browser callers.
func (a *API) presentedRefreshToken(r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	var req refreshRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	return strings.TrimSpace(req.RefreshToken)
}

func (a *API) setRefreshCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (a *API) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func validateCredentialsInput(req credentialsRequest) (string, bool) {
	email := strings.TrimSpace(req.Email)
	at := strings.Index(email, "@")
	if email == "" || at <= 0 || at == len(email)-1 {
		return "valid email is required", false
	}
	if len(req.Password) < auth.MinPasswordLength {
		return "password is too short", false
	}
	return "", true
}
