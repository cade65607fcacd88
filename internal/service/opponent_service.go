package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"

	"rpsarena/internal/llm"
	"rpsarena/internal/models"
	"rpsarena/internal/repository"
	"rpsarena/internal/validation"
)

var (
	ErrOpponentNotFound  = errors.New("opponent not found")
	ErrOpponentInUse     = errors.New("opponent has game records and cannot be deleted")
	ErrOpponentNameTaken = errors.New("opponent name already taken")
	ErrNoChanges         = errors.New("no fields to update")
)

const defaultSortOrder = 10

// OpponentStore persists opponent profiles
type OpponentStore interface {
	GetOpponent(ctx context.Context, id int64) (*models.Opponent, error)
	GetByName(ctx context.Context, name string) (*models.Opponent, error)
	List(ctx context.Context, enabledOnly bool) ([]models.Opponent, error)
	Create(ctx context.Context, o *models.Opponent) (int64, error)
	Update(ctx context.Context, o *models.Opponent) error
	Delete(ctx context.Context, id int64) error
	CountSessions(ctx context.Context, id int64) (int, error)
}

// OpponentInput carries admin edits. Nil fields are left unchanged on update.
type OpponentInput struct {
	Name          *string `json:"name"`
	DisplayName   *string `json:"display_name"`
	DisplayNameEn *string `json:"display_name_en"`
	Avatar        *string `json:"avatar"`
	Difficulty    *string `json:"difficulty"`
	Description   *string `json:"description"`
	DescriptionEn *string `json:"description_en"`
	Provider      *string `json:"provider"`
	Host          *string `json:"host"`
	APIKey        *string `json:"api_key"`
	Model         *string `json:"model"`
	Enabled       *bool   `json:"enabled"`
	SortOrder     *int    `json:"sort_order"`
}

// PublicOpponent is an opponent as shown to players, without endpoint or key
type PublicOpponent struct {
	models.Opponent
	Model string `json:"model,omitempty"`
}

// AdminOpponent is an opponent with its model configuration and a masked key
type AdminOpponent struct {
	models.Opponent
	Provider models.Provider `json:"provider"`
	Host     string          `json:"host,omitempty"`
	APIKey   string          `json:"api_key,omitempty"`
	Model    string          `json:"model,omitempty"`
}

func toAdminOpponent(o models.Opponent) AdminOpponent {
	view := AdminOpponent{Opponent: o, Provider: models.ProviderOpenAI}
	if o.Model != nil {
		if o.Model.Provider != "" {
			view.Provider = o.Model.Provider
		}
		view.Host = o.Model.Endpoint
		view.APIKey = o.Model.MaskedAPIKey()
		view.Model = o.Model.Model
	}
	return view
}

// DiagnosticsRequest is an unsaved model configuration to probe
type DiagnosticsRequest struct {
	Action   string `json:"action"`
	Provider string `json:"provider"`
	Host     string `json:"host"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

// Config converts the request into a model configuration
func (r DiagnosticsRequest) Config() (models.ExternalModelConfig, error) {
	p, err := models.ParseProvider(r.Provider)
	if err != nil {
		return models.ExternalModelConfig{}, fmt.Errorf("%w: %v", llm.ErrConfigInvalid, err)
	}
	return models.ExternalModelConfig{
		Provider: p,
		Endpoint: strings.TrimSpace(r.Host),
		APIKey:   strings.TrimSpace(r.APIKey),
		Model:    strings.TrimSpace(r.Model),
	}, nil
}

// OpponentService manages opponent profiles
type OpponentService struct {
	store   OpponentStore
	adapter *llm.Adapter
}

// NewOpponentService creates a new opponent service
func NewOpponentService(store OpponentStore, adapter *llm.Adapter) *OpponentService {
	return &OpponentService{store: store, adapter: adapter}
}

// ListPublic returns enabled opponents in display order
func (s *OpponentService) ListPublic(ctx context.Context) ([]PublicOpponent, error) {
	opponents, err := s.store.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list opponents: %w", err)
	}

	views := make([]PublicOpponent, 0, len(opponents))
	for _, o := range opponents {
		views = append(views, PublicOpponent{Opponent: o, Model: o.ModelName()})
	}
	return views, nil
}

// ListAdmin returns every opponent with its model configuration
func (s *OpponentService) ListAdmin(ctx context.Context) ([]AdminOpponent, error) {
	opponents, err := s.store.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list opponents: %w", err)
	}

	views := make([]AdminOpponent, 0, len(opponents))
	for _, o := range opponents {
		views = append(views, toAdminOpponent(o))
	}
	return views, nil
}

// Create adds an opponent. A missing name is derived from the display name.
func (s *OpponentService) Create(ctx context.Context, in OpponentInput) (*AdminOpponent, error) {
	o := &models.Opponent{
		Difficulty: models.DifficultyNormal,
		Enabled:    true,
		SortOrder:  defaultSortOrder,
	}
	if err := applyInput(o, in); err != nil {
		return nil, err
	}
	if o.Name == "" {
		source := o.DisplayNameEn
		if source == "" {
			source = o.DisplayName
		}
		o.Name = slug.Make(source)
	}

	if err := validation.ValidateOpponent(o); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, o.Name, 0); err != nil {
		return nil, err
	}

	id, err := s.store.Create(ctx, o)
	if errors.Is(err, repository.ErrDuplicateName) {
		return nil, ErrOpponentNameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create opponent: %w", err)
	}
	log.WithFields(log.Fields{"opponent_id": id, "name": o.Name}).Info("Opponent created")

	return s.loadAdmin(ctx, id)
}

// Update applies the provided fields to an existing opponent
func (s *OpponentService) Update(ctx context.Context, id int64, in OpponentInput) (*AdminOpponent, error) {
	o, err := s.store.GetOpponent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load opponent: %w", err)
	}
	if o == nil {
		return nil, ErrOpponentNotFound
	}
	if in == (OpponentInput{}) {
		return nil, ErrNoChanges
	}

	previousName := o.Name
	if err := applyInput(o, in); err != nil {
		return nil, err
	}
	if err := validation.ValidateOpponent(o); err != nil {
		return nil, err
	}
	if o.Name != previousName {
		if err := s.ensureNameFree(ctx, o.Name, o.ID); err != nil {
			return nil, err
		}
	}

	if err := s.store.Update(ctx, o); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, ErrOpponentNameTaken
		}
		return nil, fmt.Errorf("failed to update opponent: %w", err)
	}
	log.WithField("opponent_id", id).Info("Opponent updated")

	return s.loadAdmin(ctx, id)
}

// Delete removes an opponent that no game session references
func (s *OpponentService) Delete(ctx context.Context, id int64) error {
	o, err := s.store.GetOpponent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load opponent: %w", err)
	}
	if o == nil {
		return ErrOpponentNotFound
	}

	count, err := s.store.CountSessions(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	if count > 0 {
		return ErrOpponentInUse
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete opponent: %w", err)
	}
	log.WithField("opponent_id", id).Info("Opponent deleted")
	return nil
}

// TestConnection probes a model configuration with a tiny request
func (s *OpponentService) TestConnection(ctx context.Context, req DiagnosticsRequest) (*llm.ConnectionResult, error) {
	cfg, err := req.Config()
	if err != nil {
		return nil, err
	}
	return s.adapter.TestConnection(ctx, cfg)
}

// GenerateProfile asks a model to name and describe itself
func (s *OpponentService) GenerateProfile(ctx context.Context, req DiagnosticsRequest) (*llm.GeneratedProfile, error) {
	cfg, err := req.Config()
	if err != nil {
		return nil, err
	}
	return s.adapter.GenerateProfile(ctx, cfg)
}

func (s *OpponentService) loadAdmin(ctx context.Context, id int64) (*AdminOpponent, error) {
	o, err := s.store.GetOpponent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load opponent: %w", err)
	}
	if o == nil {
		return nil, ErrOpponentNotFound
	}
	view := toAdminOpponent(*o)
	return &view, nil
}

func (s *OpponentService) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.store.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check opponent name: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		return ErrOpponentNameTaken
	}
	return nil
}

// isMaskedKey reports whether a key is the masked form sent to the admin UI
func isMaskedKey(key string) bool {
	return strings.HasPrefix(key, "****")
}

func applyInput(o *models.Opponent, in OpponentInput) error {
	if in.Name != nil {
		o.Name = strings.TrimSpace(*in.Name)
	}
	if in.DisplayName != nil {
		o.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.DisplayNameEn != nil {
		o.DisplayNameEn = strings.TrimSpace(*in.DisplayNameEn)
	}
	if in.Avatar != nil {
		o.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.Difficulty != nil {
		d := models.DifficultyNormal
		if *in.Difficulty != "" {
			parsed, err := models.ParseDifficulty(*in.Difficulty)
			if err != nil {
				return validation.ValidationError{Field: "difficulty", Message: err.Error()}
			}
			d = parsed
		}
		o.Difficulty = d
	}
	if in.Description != nil {
		o.Description = *in.Description
	}
	if in.DescriptionEn != nil {
		o.DescriptionEn = *in.DescriptionEn
	}
	if in.Enabled != nil {
		o.Enabled = *in.Enabled
	}
	if in.SortOrder != nil {
		o.SortOrder = *in.SortOrder
	}

	if in.Provider == nil && in.Host == nil && in.APIKey == nil && in.Model == nil {
		return nil
	}

	cfg := models.ExternalModelConfig{Provider: models.ProviderOpenAI}
	if o.Model != nil {
		cfg = *o.Model
	}
	if in.Provider != nil {
		p, err := models.ParseProvider(*in.Provider)
		if err != nil {
			return validation.ValidationError{Field: "provider", Message: err.Error()}
		}
		cfg.Provider = p
	}
	if in.Host != nil {
		cfg.Endpoint = strings.TrimSpace(*in.Host)
	}
	if in.APIKey != nil && !isMaskedKey(*in.APIKey) {
		cfg.APIKey = strings.TrimSpace(*in.APIKey)
	}
	if in.Model != nil {
		cfg.Model = strings.TrimSpace(*in.Model)
	}

	if cfg.Endpoint == "" && cfg.APIKey == "" && cfg.Model == "" {
		o.Model = nil
	} else {
		o.Model = &cfg
	}
	return nil
}
