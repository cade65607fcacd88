package handlers

import (
	"net/http"

	"rpsarena/internal/service"
)

// StatsHandler serves the public scoreboard
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetStats returns totals and the per-opponent breakdown
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetStats(r.Context())
	if err != nil {
		writeServiceError(w, "Error loading stats", err)
		return
	}
	respondOK(w, stats)
}
