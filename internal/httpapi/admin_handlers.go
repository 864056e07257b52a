package httpapi

import (
	"net/http"
	"strings"

	"civicaid.org/internal/auth"
	"civicaid.org/internal/obs"
)

type assignRoleRequest struct {
	Role string `json:"role"`
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

type listUsersResponse struct {
	Users []auth.UserView `json:"users"`
}

func (a *API) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	users, err := a.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "user listing failed")
		return
	}
	views := make([]auth.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	writeJSON(w, http.StatusOK, listUsersResponse{Users: views})
}

func (a *API) handleAdminUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/admin/users/"), "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, r, http.StatusNotFound, "not_found", "resource not found")
		return
	}
	userID := parts[0]

	switch parts[1] {
	case "role":
		a.handleAssignRole(w, r, userID)
	case "active":
		a.handleSetActive(w, r, userID)
	case "sessions":
		a.handleRevokeSessions(w, r, userID)
	default:
		writeError(w, r, http.StatusNotFound, "not_found", "resource not found")
	}
}

func (a *API) handleAssignRole(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	var req assignRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_input", "unknown role")
		return
	}
	user, err := a.svc.AssignRole(r.Context(), userID, role)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	obs.Log("info", "role_assigned", map[string]any{
		"user_id": user.ID,
		"role":    string(user.Role),
		"actor":   actorID(r),
	})
	writeJSON(w, http.StatusOK, user.View())
}

func (a *API) handleSetActive(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	var req setActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if req.IsActive == nil {
		writeError(w, r, http.StatusBadRequest, "invalid_input", "is_active is required")
		return
	}
	user, err := a.svc.SetActive(r.Context(), userID, *req.IsActive)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	obs.Log("info", "activation_changed", map[string]any{
		"user_id":   user.ID,
		"is_active": user.IsActive,
		"actor":     actorID(r),
	})
	writeJSON(w, http.StatusOK, user.View())
}

func (a *API) handleRevokeSessions(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if err := a.svc.RevokeAllForUser(r.Context(), userID); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal", "session revocation failed")
		return
	}
	obs.Log("info", "sessions_revoked", map[string]any{
		"user_id": userID,
		"actor":   actorID(r),
	})
	w.WriteHeader(http.StatusNoContent)
}

func actorID(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		return claims.Subject
	}
	return ""
}
