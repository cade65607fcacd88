package handlers

const (
	maxBodyBytes = 64 << 10

	ErrInvalidJSON         = "Invalid JSON body"
	ErrUnauthorized        = "Unauthorized"
	ErrInvalidCSRF         = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
	ErrMissingSessionID    = "sessionId is required"
	ErrMissingID           = "id is required"
)
