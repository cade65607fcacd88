package models

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty selects the decision strategy for an opponent
type Difficulty string

const (
	DifficultyNormal Difficulty = "normal"
	DifficultyChaos  Difficulty = "chaos"
)

// ParseDifficulty converts a stored value into a Difficulty.
// Unknown values are a configuration error.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyNormal, DifficultyChaos:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Provider identifies the flavour of completion API an opponent talks to
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderAzure  Provider = "azure"
)

// ParseProvider converts a stored value into a Provider, defaulting blank to openai
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderOpenAI, nil
	case ProviderOpenAI, ProviderAzure:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q", s)
	}
}

// PlaceholderAPIKey marks a key copied from sample configuration that was never filled in
const PlaceholderAPIKey = "your-api-key"

const (
	DefaultEndpoint = "https://api.openai.com/v1"
	DefaultModel    = "gpt-4o-mini"
)

// ExternalModelConfig holds credentials for an LLM-backed opponent
type ExternalModelConfig struct {
	Provider Provider `json:"provider"`
	Endpoint string   `json:"host"`
	APIKey   string   `json:"api_key"`
	Model    string   `json:"model"`
}

// Usable reports whether the config carries a real credential
func (c *ExternalModelConfig) Usable() bool {
	if c == nil {
		return false
	}
	key := strings.TrimSpace(c.APIKey)
	return key != "" && !strings.Contains(key, PlaceholderAPIKey)
}

// WithDefaults fills a blank endpoint and model the way gameplay expects.
// Azure endpoints are deployment specific and are never defaulted.
func (c ExternalModelConfig) WithDefaults() ExternalModelConfig {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if strings.TrimSpace(c.Endpoint) == "" && c.Provider == ProviderOpenAI {
		c.Endpoint = DefaultEndpoint
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	return c
}

// MaskedAPIKey hides all but the last four characters of the key
func (c *ExternalModelConfig) MaskedAPIKey() string {
	if c == nil || c.APIKey == "" {
		return ""
	}
	key := []rune(c.APIKey)
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + string(key[len(key)-4:])
}

// Opponent is an AI opponent profile
type Opponent struct {
	ID            int64                `json:"id"`
	Name          string               `json:"name"`
	DisplayName   string               `json:"display_name"`
	DisplayNameEn string               `json:"display_name_en,omitempty"`
	Avatar        string               `json:"avatar,omitempty"`
	Difficulty    Difficulty           `json:"difficulty"`
	Description   string               `json:"description,omitempty"`
	DescriptionEn string               `json:"description_en,omitempty"`
	Enabled       bool                 `json:"enabled"`
	SortOrder     int                  `json:"sort_order"`
	Model         *ExternalModelConfig `json:"-"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// UsesExternalModel reports whether decisions should be delegated to an LLM
func (o *Opponent) UsesExternalModel() bool {
	return o.Model.Usable()
}

// ModelName returns the configured model identifier, if any
func (o *Opponent) ModelName() string {
	if o.Model == nil {
		return ""
	}
	return o.Model.Model
}

// OpponentSummary is the public projection of an opponent embedded in session responses
type OpponentSummary struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Avatar      string     `json:"avatar,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	Description string     `json:"description,omitempty"`
	Model       string     `json:"model,omitempty"`
}

// Summary projects the opponent without credentials
func (o *Opponent) Summary() OpponentSummary {
	return OpponentSummary{
		ID:          o.ID,
		Name:        o.Name,
		DisplayName: o.DisplayName,
		Avatar:      o.Avatar,
		Difficulty:  o.Difficulty,
		Description: o.Description,
		Model:       o.ModelName(),
	}
}
