package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"rpsarena/internal/llm"
	"rpsarena/internal/security"
	"rpsarena/internal/service"
	"rpsarena/internal/validation"
)

// envelope is the body of every API response
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: status < 400, Data: data}); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondWithError writes userMsg to the client and logs err with logMsg
func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		entry := log.WithError(err).WithField("status", status)
		if status >= http.StatusInternalServerError {
			entry.Error(logMsg)
		} else {
			entry.Debug(logMsg)
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(envelope{Success: false, Error: userMsg}); encErr != nil {
		log.WithError(encErr).Warn("Failed to write error response")
	}
}

// writeServiceError maps a service error onto a status code and message
func writeServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr validation.ValidationError

	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, verr.Error(), logMsg, err)
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrOpponentNotFound),
		errors.Is(err, service.ErrOpponentUnavailable):
		respondWithError(w, http.StatusNotFound, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrSessionAlreadyFinished),
		errors.Is(err, service.ErrRoundCountExceeded),
		errors.Is(err, service.ErrInvalidMove),
		errors.Is(err, service.ErrOpponentInUse),
		errors.Is(err, service.ErrOpponentNameTaken),
		errors.Is(err, service.ErrNoChanges),
		errors.Is(err, llm.ErrConfigInvalid):
		respondWithError(w, http.StatusBadRequest, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrRoundConflict):
		respondWithError(w, http.StatusConflict, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken):
		respondWithError(w, http.StatusUnauthorized, err.Error(), logMsg, err)
	case errors.Is(err, security.ErrLockedOut):
		respondWithError(w, http.StatusTooManyRequests, err.Error(), logMsg, err)
	case errors.Is(err, llm.ErrUpstream):
		respondWithError(w, http.StatusBadGateway, err.Error(), logMsg, err)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

// decodeJSON reads a JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return false
	}
	return true
}
