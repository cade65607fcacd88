package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"rpsarena/internal/security"
	"rpsarena/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	AdminContextKey     ContextKey = "admin"
	RequestIDContextKey ContextKey = "request_id"

	RequestIDHeader = "X-Request-ID"
	CSRFHeader      = "X-CSRF-Token"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService  *service.AuthService
	loginLimiter *security.RateLimiter
	clientIP     *security.ClientIPResolver
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, loginLimiter *security.RateLimiter, clientIP *security.ClientIPResolver) *Middleware {
	return &Middleware{
		authService:  authService,
		loginLimiter: loginLimiter,
		clientIP:     clientIP,
	}
}

// RequireAdmin is middleware that requires a valid admin cookie.
// Requests that change state must also carry the matching CSRF header.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.AdminCookieName)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		claims, err := m.authService.Authenticate(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.ExpiredAdminCookie(r))
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "Rejected admin token", err)
			return
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if !m.authService.ValidCSRF(claims, r.Header.Get(CSRFHeader)) {
				respondWithError(w, http.StatusForbidden, ErrInvalidCSRF, "", nil)
				return
			}
		}

		ctx := context.WithValue(r.Context(), AdminContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects clients that exceed the login rate
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.loginLimiter != nil && !m.loginLimiter.Allow(m.clientIP.ClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging middleware tags each request with an id and logs it when done
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		next.ServeHTTP(rec, r.WithContext(ctx))

		log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		}).Info("Request handled")
	})
}

// GetAdminFromContext retrieves the admin claims from the request context
func GetAdminFromContext(ctx context.Context) *security.AdminClaims {
	claims, ok := ctx.Value(AdminContextKey).(*security.AdminClaims)
	if !ok {
		return nil
	}
	return claims
}

// RequestID returns the id assigned by Logging, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}
