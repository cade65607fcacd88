package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rpsarena/internal/database"
	"rpsarena/internal/models"
)

// ErrStaleSession means the session changed between reading it and writing a round:
// another round was recorded first, or the session was finished
var ErrStaleSession = errors.New("session was modified concurrently")

// GameRepository handles game_sessions and game_rounds database operations
type GameRepository struct {
	db *database.DB
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{db: db}
}

const sessionColumns = `id, ai_id, player_name, total_rounds, player_wins, ai_wins, draws, status, ai_comment, created_at, finished_at`

func scanSession(row rowScanner) (*models.GameSession, error) {
	var (
		s          models.GameSession
		status     string
		comment    sql.NullString
		createdAt  sql.NullTime
		finishedAt sql.NullTime
	)

	err := row.Scan(&s.ID, &s.OpponentID, &s.PlayerName, &s.TotalRounds, &s.PlayerWins, &s.AIWins, &s.Draws,
		&status, &comment, &createdAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	s.Status = models.SessionStatus(status)
	s.AIComment = comment.String
	s.CreatedAt = createdAt.Time
	if finishedAt.Valid {
		s.FinishedAt = &finishedAt.Time
	}
	return &s, nil
}

// CreateSession inserts a new session in playing status
func (r *GameRepository) CreateSession(ctx context.Context, s *models.GameSession) error {
	query := `
		INSERT INTO game_sessions (id, ai_id, player_name, total_rounds, status)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.OpponentID, s.PlayerName, s.TotalRounds, string(models.StatusPlaying))
	return err
}

// GetSession retrieves a session by ID. It returns nil, nil when none exists.
func (r *GameRepository) GetSession(ctx context.Context, id string) (*models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = ?`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetHistory returns a session's rounds in play order
func (r *GameRepository) GetHistory(ctx context.Context, sessionID string) ([]models.RoundRecord, error) {
	query := `
		SELECT round_number, player_choice, ai_choice, result, was_timeout, created_at
		FROM game_rounds
		WHERE session_id = ?
		ORDER BY round_number
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.RoundRecord
	for rows.Next() {
		var (
			rec                models.RoundRecord
			player, ai, result string
			createdAt          sql.NullTime
		)
		if err := rows.Scan(&rec.Number, &player, &ai, &result, &rec.WasTimeout, &createdAt); err != nil {
			return nil, err
		}
		if rec.PlayerMove, err = models.ParseMove(player); err != nil {
			return nil, fmt.Errorf("round %d: %w", rec.Number, err)
		}
		if rec.AIMove, err = models.ParseMove(ai); err != nil {
			return nil, fmt.Errorf("round %d: %w", rec.Number, err)
		}
		if rec.Outcome, err = models.ParseOutcome(result); err != nil {
			return nil, fmt.Errorf("round %d: %w", rec.Number, err)
		}
		rec.CreatedAt = createdAt.Time
		history = append(history, rec)
	}
	return history, rows.Err()
}

func tallyColumn(o models.Outcome) (string, error) {
	switch o {
	case models.PlayerWin:
		return "player_wins", nil
	case models.AIWin:
		return "ai_wins", nil
	case models.Draw:
		return "draws", nil
	default:
		return "", fmt.Errorf("invalid outcome %q", o)
	}
}

// AppendRound records a round and increments the matching tally in one transaction.
// The increment only applies while the session is playing and exactly round.Number-1
// rounds exist, so a duplicate submission fails with ErrStaleSession instead of
// double-counting. A non-nil closing comment marks this as the final round: the
// same transaction flips the session to finished, so a session never holds all of
// its rounds while still playing.
func (r *GameRepository) AppendRound(ctx context.Context, sessionID string, round models.RoundRecord, closing *string) error {
	column, err := tallyColumn(round.Outcome)
	if err != nil {
		return err
	}

	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		update := `
			UPDATE game_sessions
			SET ` + column + ` = ` + column + ` + 1
			WHERE id = ? AND status = ? AND player_wins + ai_wins + draws = ?
		`
		res, err := tx.ExecContext(ctx, update, sessionID, string(models.StatusPlaying), round.Number-1)
		if err != nil {
			return fmt.Errorf("failed to update tally: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return ErrStaleSession
		}

		insert := `
			INSERT INTO game_rounds (session_id, round_number, player_choice, ai_choice, result, was_timeout)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, insert, sessionID, round.Number, string(round.PlayerMove),
			string(round.AIMove), string(round.Outcome), round.WasTimeout); err != nil {
			return fmt.Errorf("failed to insert round: %w", err)
		}

		if closing == nil {
			return nil
		}
		finalize := `
			UPDATE game_sessions
			SET status = ?, ai_comment = ?, finished_at = CURRENT_TIMESTAMP
			WHERE id = ? AND status = ?
		`
		if _, err := tx.ExecContext(ctx, finalize, string(models.StatusFinished), *closing,
			sessionID, string(models.StatusPlaying)); err != nil {
			return fmt.Errorf("failed to finalize session: %w", err)
		}
		return nil
	})
}
