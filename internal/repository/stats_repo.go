package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"rpsarena/internal/database"
	"rpsarena/internal/models"
)

// StatsRepository aggregates finished game sessions
type StatsRepository struct {
	db database.DBTX
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db database.DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals sums the tallies of every finished session
func (r *StatsRepository) Totals(ctx context.Context) (*models.TotalStats, error) {
	query := `
		SELECT
			COALESCE(SUM(player_wins), 0),
			COALESCE(SUM(ai_wins), 0),
			COALESCE(SUM(draws), 0),
			COUNT(*)
		FROM game_sessions
		WHERE status = ?
	`
	var t models.TotalStats
	err := r.db.QueryRowContext(ctx, query, string(models.StatusFinished)).
		Scan(&t.TotalPlayerWins, &t.TotalAIWins, &t.TotalDraws, &t.TotalGames)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate totals: %w", err)
	}
	return &t, nil
}

// ByOpponent aggregates finished sessions per enabled opponent, ordered by opponent ID.
// Opponents without finished sessions are included with zero counts.
func (r *StatsRepository) ByOpponent(ctx context.Context) ([]models.OpponentStats, error) {
	query := `
		SELECT
			ao.id, ao.display_name, ao.display_name_en, ao.avatar, ao.difficulty,
			COUNT(gs.id),
			COALESCE(SUM(gs.player_wins), 0),
			COALESCE(SUM(gs.ai_wins), 0),
			COALESCE(SUM(gs.draws), 0),
			COALESCE(SUM(CASE WHEN gs.player_wins > gs.ai_wins THEN 1 ELSE 0 END), 0)
		FROM ai_opponents ao
		LEFT JOIN game_sessions gs ON ao.id = gs.ai_id AND gs.status = ?
		WHERE ao.enabled = ` + r.db.GetDialect().BoolValue(true) + `
		GROUP BY ao.id, ao.display_name, ao.display_name_en, ao.avatar, ao.difficulty
		ORDER BY ao.id
	`

	rows, err := r.db.QueryContext(ctx, query, string(models.StatusFinished))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate opponent stats: %w", err)
	}
	defer rows.Close()

	stats := []models.OpponentStats{}
	for rows.Next() {
		var (
			s                    models.OpponentStats
			nameEn, avatar, diff sql.NullString
			playerSessionWins    int
		)
		if err := rows.Scan(&s.ID, &s.Name, &nameEn, &avatar, &diff,
			&s.GamesPlayed, &s.PlayerWins, &s.AIWins, &s.Draws, &playerSessionWins); err != nil {
			return nil, err
		}
		s.NameEn = nameEn.String
		s.Avatar = avatar.String
		s.Difficulty = models.Difficulty(diff.String)
		s.PlayerWinRate = WinRate(playerSessionWins, s.GamesPlayed)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// WinRate returns wins as a percentage of games, rounded to one decimal place
func WinRate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(games)*1000) / 10
}
