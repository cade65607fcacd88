package service

import (
	"context"
	"fmt"

	"rpsarena/internal/models"
)

// StatsStore aggregates finished sessions
type StatsStore interface {
	Totals(ctx context.Context) (*models.TotalStats, error)
	ByOpponent(ctx context.Context) ([]models.OpponentStats, error)
}

// StatsService builds the public scoreboard
type StatsService struct {
	store StatsStore
}

// NewStatsService creates a new stats service
func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{store: store}
}

// GetStats returns totals over finished sessions and a breakdown per enabled opponent
func (s *StatsService) GetStats(ctx context.Context) (*models.Stats, error) {
	totals, err := s.store.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}

	byAI, err := s.store.ByOpponent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get opponent stats: %w", err)
	}
	if byAI == nil {
		byAI = []models.OpponentStats{}
	}

	return &models.Stats{Total: *totals, ByAI: byAI}, nil
}
