package handlers

import (
	"net/http"
	"strings"

	"rpsarena/internal/security"
	"rpsarena/internal/service"
	"rpsarena/internal/validation"
)

// AuthHandler handles admin login and logout
type AuthHandler struct {
	authService *service.AuthService
	clientIP    *security.ClientIPResolver
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, clientIP *security.ClientIPResolver) *AuthHandler {
	return &AuthHandler{authService: authService, clientIP: clientIP}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type adminSessionResponse struct {
	Username  string `json:"username"`
	CSRFToken string `json:"csrfToken"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Login checks the admin credentials and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := validation.ValidateLogin(req.Username, req.Password); err != nil {
		writeServiceError(w, "", err)
		return
	}

	session, err := h.authService.Login(r.Context(), h.clientIP.ClientIP(r), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, "Admin login rejected", err)
		return
	}

	http.SetCookie(w, security.AdminCookie(r, session.Token, session.ExpiresAt))
	respondOK(w, adminSessionResponse{
		Username:  req.Username,
		CSRFToken: session.CSRFToken,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

// Session returns the CSRF token of the current admin session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := GetAdminFromContext(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}
	respondOK(w, adminSessionResponse{
		Username:  claims.Subject,
		CSRFToken: h.authService.CSRFToken(claims),
		ExpiresAt: claims.ExpiresAt.Unix(),
	})
}

// Logout clears the admin cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.ExpiredAdminCookie(r))
	respondOK(w, nil)
}
