package httphandler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
)

// Login verifies admin credentials and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation", "username and password are required")
		return
	}

	token, admin, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, LoginResponse{Token: token, Admin: toAdminResponse(*admin)})
}

// Me returns the authenticated admin account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())
	writeData(w, http.StatusOK, toAdminResponse(*admin))
}

// ChangePassword verifies the current password and stores a new one.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if len(req.NewPassword) < 8 {
		writeError(w, http.StatusBadRequest, "validation", "new password must be at least 8 characters")
		return
	}

	admin := adminFrom(r.Context())
	if err := h.sessions.ChangePassword(r.Context(), admin.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "password changed")
}

// OAuthURLResponse carries the consent URL for the out-of-band
// authorization flow.
type OAuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// OAuthURL returns the consent URL the admin visits to authorize the
// dashboard against the blog platform.
func (h *Handler) OAuthURL(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		h.logger.Error("failed to generate oauth state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	state := hex.EncodeToString(buf)

	writeData(w, http.StatusOK, OAuthURLResponse{
		URL:   h.auth.AuthCodeURL(state),
		State: state,
	})
}

// OAuthExchange trades the pasted authorization code for a credential.
func (h *Handler) OAuthExchange(w http.ResponseWriter, r *http.Request) {
	var req ExchangeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "validation", "authorization code is required")
		return
	}

	admin := adminFrom(r.Context())
	if _, err := h.auth.ExchangeCode(r.Context(), admin.ID, req.Code); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	status, err := h.auth.Status(r.Context(), admin.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, status)
}

// OAuthStatus reports credential health without exposing token values.
func (h *Handler) OAuthStatus(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	status, err := h.auth.Status(r.Context(), admin.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, status)
}

// OAuthDisconnect deactivates the admin's platform credential.
func (h *Handler) OAuthDisconnect(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	if err := h.auth.Disconnect(r.Context(), admin.ID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "disconnected")
}
