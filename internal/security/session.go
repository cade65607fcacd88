package security

import (
	"net/http"
	"time"
)

const (
	// AdminCookieName holds the signed admin token
	AdminCookieName = "admin_session"

	// adminCookiePath covers /api/admin and /api/ai-configs
	adminCookiePath = "/api"
)

// IsSecureRequest reports whether the request arrived over HTTPS, directly or through a proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil || r.URL.Scheme == "https" {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}

// AdminCookie carries an issued admin token until it expires
func AdminCookie(r *http.Request, token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     AdminCookieName,
		Value:    token,
		Path:     adminCookiePath,
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
	}
}

// ExpiredAdminCookie tells the browser to drop the admin token
func ExpiredAdminCookie(r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     AdminCookieName,
		Path:     adminCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
	}
}
