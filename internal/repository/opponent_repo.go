package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rpsarena/internal/database"
	"rpsarena/internal/models"
)

var (
	// ErrOpponentConfig is returned when a stored opponent row holds values the engine cannot use
	ErrOpponentConfig = errors.New("invalid opponent configuration")

	// ErrDuplicateName is returned when another opponent already uses the name
	ErrDuplicateName = errors.New("opponent name already exists")
)

// OpponentRepository handles ai_opponents database operations
type OpponentRepository struct {
	db database.DBTX
}

// NewOpponentRepository creates a new opponent repository
func NewOpponentRepository(db database.DBTX) *OpponentRepository {
	return &OpponentRepository{db: db}
}

const opponentColumns = `
	id, name, display_name, display_name_en, avatar, difficulty, description, description_en,
	provider, host, api_key, model, enabled, sort_order, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOpponent(row rowScanner) (*models.Opponent, error) {
	var (
		o                                       models.Opponent
		displayNameEn, avatar, desc, descEn     sql.NullString
		difficulty, provider, host, apiKey, mdl sql.NullString
		createdAt, updatedAt                    sql.NullTime
	)

	err := row.Scan(
		&o.ID, &o.Name, &o.DisplayName, &displayNameEn, &avatar, &difficulty, &desc, &descEn,
		&provider, &host, &apiKey, &mdl, &o.Enabled, &o.SortOrder, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.DisplayNameEn = displayNameEn.String
	o.Avatar = avatar.String
	o.Description = desc.String
	o.DescriptionEn = descEn.String
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	d, err := models.ParseDifficulty(difficulty.String)
	if err != nil {
		return nil, fmt.Errorf("%w: opponent %d: %v", ErrOpponentConfig, o.ID, err)
	}
	o.Difficulty = d

	p, err := models.ParseProvider(provider.String)
	if err != nil {
		return nil, fmt.Errorf("%w: opponent %d: %v", ErrOpponentConfig, o.ID, err)
	}

	if host.String != "" || apiKey.String != "" || mdl.String != "" {
		o.Model = &models.ExternalModelConfig{
			Provider: p,
			Endpoint: host.String,
			APIKey:   apiKey.String,
			Model:    mdl.String,
		}
	}

	return &o, nil
}

// GetOpponent retrieves an opponent by ID. It returns nil, nil when none exists.
func (r *OpponentRepository) GetOpponent(ctx context.Context, id int64) (*models.Opponent, error) {
	query := `SELECT ` + opponentColumns + ` FROM ai_opponents WHERE id = ?`

	o, err := scanOpponent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// GetByName retrieves an opponent by its unique name. It returns nil, nil when none exists.
func (r *OpponentRepository) GetByName(ctx context.Context, name string) (*models.Opponent, error) {
	query := `SELECT ` + opponentColumns + ` FROM ai_opponents WHERE name = ?`

	o, err := scanOpponent(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// List returns opponents ordered for display, optionally only the enabled ones
func (r *OpponentRepository) List(ctx context.Context, enabledOnly bool) ([]models.Opponent, error) {
	query := `SELECT ` + opponentColumns + ` FROM ai_opponents`
	if enabledOnly {
		query += ` WHERE enabled = ` + r.db.GetDialect().BoolValue(true)
	}
	query += ` ORDER BY sort_order DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opponents []models.Opponent
	for rows.Next() {
		o, err := scanOpponent(rows)
		if err != nil {
			return nil, err
		}
		opponents = append(opponents, *o)
	}
	return opponents, rows.Err()
}

func modelColumns(o *models.Opponent) (provider, host, apiKey, model interface{}) {
	if o.Model == nil {
		return string(models.ProviderOpenAI), nil, nil, nil
	}
	p := o.Model.Provider
	if p == "" {
		p = models.ProviderOpenAI
	}
	return string(p), nullIfEmpty(o.Model.Endpoint), nullIfEmpty(o.Model.APIKey), nullIfEmpty(o.Model.Model)
}

// Create inserts a new opponent and returns its ID
func (r *OpponentRepository) Create(ctx context.Context, o *models.Opponent) (int64, error) {
	query := `
		INSERT INTO ai_opponents (name, display_name, display_name_en, avatar, difficulty, description,
			description_en, provider, host, api_key, model, enabled, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	provider, host, apiKey, model := modelColumns(o)

	id, err := r.db.ExecReturningID(ctx, query,
		o.Name, o.DisplayName, nullIfEmpty(o.DisplayNameEn), nullIfEmpty(o.Avatar), string(o.Difficulty),
		nullIfEmpty(o.Description), nullIfEmpty(o.DescriptionEn), provider, host, apiKey, model,
		o.Enabled, o.SortOrder,
	)
	if err != nil {
		return 0, r.mapWriteError(err)
	}
	return id, nil
}

// Update writes every column of an existing opponent and bumps updated_at
func (r *OpponentRepository) Update(ctx context.Context, o *models.Opponent) error {
	query := `
		UPDATE ai_opponents
		SET name = ?, display_name = ?, display_name_en = ?, avatar = ?, difficulty = ?, description = ?,
			description_en = ?, provider = ?, host = ?, api_key = ?, model = ?, enabled = ?, sort_order = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	provider, host, apiKey, model := modelColumns(o)

	_, err := r.db.ExecContext(ctx, query,
		o.Name, o.DisplayName, nullIfEmpty(o.DisplayNameEn), nullIfEmpty(o.Avatar), string(o.Difficulty),
		nullIfEmpty(o.Description), nullIfEmpty(o.DescriptionEn), provider, host, apiKey, model,
		o.Enabled, o.SortOrder, o.ID,
	)
	if err != nil {
		return r.mapWriteError(err)
	}
	return nil
}

func (r *OpponentRepository) mapWriteError(err error) error {
	if r.db.GetDialect().IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateName, err)
	}
	return err
}

// Delete removes an opponent
func (r *OpponentRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ai_opponents WHERE id = ?`, id)
	return err
}

// CountSessions returns how many game sessions reference the opponent
func (r *OpponentRepository) CountSessions(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_sessions WHERE ai_id = ?`, id).Scan(&count)
	return count, err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
