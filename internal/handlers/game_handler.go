package handlers

import (
	"net/http"
	"strings"

	"rpsarena/internal/models"
	"rpsarena/internal/service"
)

// GameHandler serves match creation, lookup and play
type GameHandler struct {
	games *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *service.GameService) *GameHandler {
	return &GameHandler{games: games}
}

type createGameRequest struct {
	AIID       int64  `json:"aiId"`
	AIConfigID int64  `json:"aiConfigId"`
	PlayerName string `json:"playerName"`
	Locale     string `json:"locale"`
}

type playRequest struct {
	SessionID    string `json:"sessionId"`
	PlayerChoice string `json:"playerChoice"`
	Timeout      bool   `json:"timeout"`
	Locale       string `json:"locale"`
}

// CreateGame starts a new session
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// aiConfigId is the older name for the same field
	opponentID := req.AIID
	if opponentID == 0 {
		opponentID = req.AIConfigID
	}
	if opponentID == 0 {
		respondWithError(w, http.StatusBadRequest, "aiId is required", "", nil)
		return
	}

	detail, err := h.games.CreateSession(r.Context(), service.CreateSessionRequest{
		OpponentID: opponentID,
		PlayerName: req.PlayerName,
		Locale:     requestLocale(r, req.Locale),
	})
	if err != nil {
		writeServiceError(w, "Error creating game session", err)
		return
	}

	respondOK(w, detail)
}

// GetGame returns a session with its rounds
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, ErrMissingSessionID, "", nil)
		return
	}

	detail, err := h.games.GetSession(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, "Error loading game session", err)
		return
	}

	respondOK(w, detail)
}

// Play plays the next round of a session
func (h *GameHandler) Play(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respondWithError(w, http.StatusBadRequest, ErrMissingSessionID, "", nil)
		return
	}

	play := service.PlayRequest{
		SessionID: req.SessionID,
		Timeout:   req.Timeout,
		Locale:    requestLocale(r, req.Locale),
	}
	if !req.Timeout {
		move, err := models.ParseMove(req.PlayerChoice)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, service.ErrInvalidMove.Error(), "", err)
			return
		}
		play.Move = &move
	}

	result, err := h.games.PlayRound(r.Context(), play)
	if err != nil {
		writeServiceError(w, "Error playing round", err)
		return
	}

	respondOK(w, result)
}
