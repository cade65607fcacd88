package handlers

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"rpsarena/internal/service"
)

// OpponentHandler serves the opponent catalogue and its admin operations
type OpponentHandler struct {
	opponents *service.OpponentService
}

// NewOpponentHandler creates a new opponent handler
func NewOpponentHandler(opponents *service.OpponentService) *OpponentHandler {
	return &OpponentHandler{opponents: opponents}
}

type updateOpponentRequest struct {
	ID int64 `json:"id"`
	service.OpponentInput
}

// ListPublic returns enabled opponents without endpoint or key
func (h *OpponentHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	list, err := h.opponents.ListPublic(r.Context())
	if err != nil {
		writeServiceError(w, "Error listing opponents", err)
		return
	}
	respondOK(w, list)
}

// ListAdmin returns every opponent with its masked model configuration
func (h *OpponentHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	list, err := h.opponents.ListAdmin(r.Context())
	if err != nil {
		writeServiceError(w, "Error listing opponents", err)
		return
	}
	respondOK(w, list)
}

// Create adds an opponent
func (h *OpponentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.OpponentInput
	if !decodeJSON(w, r, &in) {
		return
	}

	created, err := h.opponents.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, "Error creating opponent", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update applies a partial update; the opponent id travels in the body
func (h *OpponentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateOpponentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrMissingID, "", nil)
		return
	}

	updated, err := h.opponents.Update(r.Context(), req.ID, req.OpponentInput)
	if err != nil {
		writeServiceError(w, "Error updating opponent", err)
		return
	}
	respondOK(w, updated)
}

// Delete removes an opponent that has no sessions
func (h *OpponentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrMissingID, "", nil)
		return
	}

	if err := h.opponents.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "Error deleting opponent", err)
		return
	}

	if claims := GetAdminFromContext(r.Context()); claims != nil {
		log.WithFields(log.Fields{"opponent_id": id, "admin": claims.Subject}).Info("Opponent deleted by admin")
	}
	respondOK(w, nil)
}

// Diagnostics tests an unsaved model configuration or asks it to describe itself
func (h *OpponentHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	var req service.DiagnosticsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	switch req.Action {
	case "test":
		res, err := h.opponents.TestConnection(r.Context(), req)
		if err != nil {
			writeServiceError(w, "Model connection test failed", err)
			return
		}
		respondOK(w, res)
	case "generate":
		profile, err := h.opponents.GenerateProfile(r.Context(), req)
		if err != nil {
			writeServiceError(w, "Model profile generation failed", err)
			return
		}
		respondOK(w, profile)
	default:
		respondWithError(w, http.StatusBadRequest, `action must be "test" or "generate"`, "", nil)
	}
}
