package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"rpsarena/internal/database"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string           `json:"version"`
	ExportedAt   time.Time        `json:"exported_at"`
	DatabaseType string           `json:"database_type"`
	Opponents    []OpponentBackup `json:"opponents"`
	Sessions     []SessionBackup  `json:"sessions"`
	Rounds       []RoundBackup    `json:"rounds"`
}

// OpponentBackup represents an ai_opponents record, credentials included
type OpponentBackup struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	DisplayName   string    `json:"display_name"`
	DisplayNameEn string    `json:"display_name_en"`
	Avatar        string    `json:"avatar"`
	Difficulty    string    `json:"difficulty"`
	Description   string    `json:"description"`
	DescriptionEn string    `json:"description_en"`
	Provider      string    `json:"provider"`
	Host          string    `json:"host"`
	APIKey        string    `json:"api_key"`
	Model         string    `json:"model"`
	Enabled       bool      `json:"enabled"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SessionBackup represents a game_sessions record
type SessionBackup struct {
	ID          string     `json:"id"`
	AIID        int64      `json:"ai_id"`
	PlayerName  string     `json:"player_name"`
	TotalRounds int        `json:"total_rounds"`
	PlayerWins  int        `json:"player_wins"`
	AIWins      int        `json:"ai_wins"`
	Draws       int        `json:"draws"`
	Status      string     `json:"status"`
	AIComment   string     `json:"ai_comment"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at"`
}

// RoundBackup represents a game_rounds record
type RoundBackup struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	RoundNumber  int       `json:"round_number"`
	PlayerChoice string    `json:"player_choice"`
	AIChoice     string    `json:"ai_choice"`
	Result       string    `json:"result"`
	WasTimeout   bool      `json:"was_timeout"`
	CreatedAt    time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete backup of the database as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	log.Info("Starting database export...")

	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.Name(),
		Opponents:    []OpponentBackup{},
		Sessions:     []SessionBackup{},
		Rounds:       []RoundBackup{},
	}

	if err := s.exportOpponents(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to export opponents: %w", err)
	}
	if err := s.exportSessions(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to export sessions: %w", err)
	}
	if err := s.exportRounds(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to export rounds: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Infof("Exported: %d opponents, %d sessions, %d rounds",
		len(backup.Opponents), len(backup.Sessions), len(backup.Rounds))
	return backup, nil
}

// ExportToFile writes a backup to outputPath
func (s *BackupService) ExportToFile(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if _, err := s.Export(ctx, file); err != nil {
		return err
	}

	log.Infof("Database exported successfully to %s", outputPath)
	return nil
}

// ImportFile restores a backup file
func (s *BackupService) ImportFile(ctx context.Context, inputPath string, clearFirst bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.Import(ctx, file, clearFirst)
}

// Import restores a backup in a single transaction, optionally removing existing data first
func (s *BackupService) Import(ctx context.Context, r io.Reader, clearFirst bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Infof("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if clearFirst {
			if err := clearTables(ctx, tx); err != nil {
				return err
			}
		}
		// Import in order of dependencies
		if err := importOpponents(ctx, tx, backup.Opponents); err != nil {
			return fmt.Errorf("failed to import opponents: %w", err)
		}
		if err := importSessions(ctx, tx, backup.Sessions); err != nil {
			return fmt.Errorf("failed to import sessions: %w", err)
		}
		if err := importRounds(ctx, tx, backup.Rounds); err != nil {
			return fmt.Errorf("failed to import rounds: %w", err)
		}
		return resetSequences(ctx, tx)
	})
	if err != nil {
		return err
	}

	log.Info("Database import completed successfully")
	return nil
}

// Clear deletes every opponent, session and round
func (s *BackupService) Clear(ctx context.Context) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		return clearTables(ctx, tx)
	})
}

func clearTables(ctx context.Context, tx *database.Tx) error {
	// Reverse order of dependencies
	for _, table := range []string{"game_rounds", "game_sessions", "ai_opponents"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
		log.Infof("Cleared table: %s", table)
	}
	return nil
}

func resetSequences(ctx context.Context, tx *database.Tx) error {
	for _, table := range []string{"ai_opponents", "game_rounds"} {
		query := tx.GetDialect().ResetSequenceQuery(table)
		if query == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}

func (s *BackupService) exportOpponents(ctx context.Context, backup *BackupData) error {
	query := `
		SELECT id, name, display_name, COALESCE(display_name_en, ''), COALESCE(avatar, ''), difficulty,
			COALESCE(description, ''), COALESCE(description_en, ''), provider, COALESCE(host, ''),
			COALESCE(api_key, ''), COALESCE(model, ''), enabled, sort_order, created_at, updated_at
		FROM ai_opponents ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			o                    OpponentBackup
			createdAt, updatedAt sql.NullTime
		)
		if err := rows.Scan(&o.ID, &o.Name, &o.DisplayName, &o.DisplayNameEn, &o.Avatar, &o.Difficulty,
			&o.Description, &o.DescriptionEn, &o.Provider, &o.Host, &o.APIKey, &o.Model, &o.Enabled,
			&o.SortOrder, &createdAt, &updatedAt); err != nil {
			return err
		}
		o.CreatedAt = createdAt.Time
		o.UpdatedAt = updatedAt.Time
		backup.Opponents = append(backup.Opponents, o)
	}
	return rows.Err()
}

func (s *BackupService) exportSessions(ctx context.Context, backup *BackupData) error {
	query := `
		SELECT id, ai_id, player_name, total_rounds, player_wins, ai_wins, draws, status,
			COALESCE(ai_comment, ''), created_at, finished_at
		FROM game_sessions ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			gs                    SessionBackup
			createdAt, finishedAt sql.NullTime
		)
		if err := rows.Scan(&gs.ID, &gs.AIID, &gs.PlayerName, &gs.TotalRounds, &gs.PlayerWins, &gs.AIWins,
			&gs.Draws, &gs.Status, &gs.AIComment, &createdAt, &finishedAt); err != nil {
			return err
		}
		gs.CreatedAt = createdAt.Time
		if finishedAt.Valid {
			gs.FinishedAt = &finishedAt.Time
		}
		backup.Sessions = append(backup.Sessions, gs)
	}
	return rows.Err()
}

func (s *BackupService) exportRounds(ctx context.Context, backup *BackupData) error {
	query := `
		SELECT id, session_id, round_number, player_choice, ai_choice, result, was_timeout, created_at
		FROM game_rounds ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r         RoundBackup
			createdAt sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.RoundNumber, &r.PlayerChoice, &r.AIChoice, &r.Result,
			&r.WasTimeout, &createdAt); err != nil {
			return err
		}
		r.CreatedAt = createdAt.Time
		backup.Rounds = append(backup.Rounds, r)
	}
	return rows.Err()
}

func importOpponents(ctx context.Context, tx *database.Tx, opponents []OpponentBackup) error {
	log.Infof("Importing %d opponents...", len(opponents))
	query := `
		INSERT INTO ai_opponents (id, name, display_name, display_name_en, avatar, difficulty, description,
			description_en, provider, host, api_key, model, enabled, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, o := range opponents {
		_, err := tx.ExecContext(ctx, query, o.ID, o.Name, o.DisplayName, nullIfEmpty(o.DisplayNameEn),
			nullIfEmpty(o.Avatar), o.Difficulty, nullIfEmpty(o.Description), nullIfEmpty(o.DescriptionEn),
			o.Provider, nullIfEmpty(o.Host), nullIfEmpty(o.APIKey), nullIfEmpty(o.Model), o.Enabled,
			o.SortOrder, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import opponent %d: %w", o.ID, err)
		}
	}
	return nil
}

func importSessions(ctx context.Context, tx *database.Tx, sessions []SessionBackup) error {
	log.Infof("Importing %d sessions...", len(sessions))
	query := `
		INSERT INTO game_sessions (id, ai_id, player_name, total_rounds, player_wins, ai_wins, draws, status,
			ai_comment, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, gs := range sessions {
		var finishedAt interface{}
		if gs.FinishedAt != nil {
			finishedAt = *gs.FinishedAt
		}
		_, err := tx.ExecContext(ctx, query, gs.ID, gs.AIID, gs.PlayerName, gs.TotalRounds, gs.PlayerWins,
			gs.AIWins, gs.Draws, gs.Status, nullIfEmpty(gs.AIComment), gs.CreatedAt, finishedAt)
		if err != nil {
			return fmt.Errorf("failed to import session %s: %w", gs.ID, err)
		}
	}
	return nil
}

func importRounds(ctx context.Context, tx *database.Tx, rounds []RoundBackup) error {
	log.Infof("Importing %d rounds...", len(rounds))
	query := `
		INSERT INTO game_rounds (id, session_id, round_number, player_choice, ai_choice, result, was_timeout, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, r := range rounds {
		_, err := tx.ExecContext(ctx, query, r.ID, r.SessionID, r.RoundNumber, r.PlayerChoice, r.AIChoice,
			r.Result, r.WasTimeout, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import round %d: %w", r.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
