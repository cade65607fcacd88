package validation

import (
	"errors"
	"strings"
	"testing"

	"rpsarena/internal/models"
)

func TestValidateOpponentName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "simple slug",
			input:   "terminator",
			wantErr: false,
		},
		{
			name:    "slug with hyphen and digits",
			input:   "gpt-4o-mini",
			wantErr: false,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "uppercase",
			input:   "Terminator",
			wantErr: true,
		},
		{
			name:    "spaces",
			input:   "chaos monkey",
			wantErr: true,
		},
		{
			name:    "trailing hyphen",
			input:   "bot-",
			wantErr: true,
		},
		{
			name:    "too long",
			input:   strings.Repeat("a", 65),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOpponentName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOpponentName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAvatar(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "empty", input: "", wantErr: false},
		{name: "svg file", input: "robot.svg", wantErr: false},
		{name: "upper-case extension", input: "robot.SVG", wantErr: false},
		{name: "png", input: "robot.png", wantErr: true},
		{name: "path traversal", input: "../secret.svg", wantErr: true},
		{name: "nested path", input: "a/b.svg", wantErr: true},
		{name: "hidden file", input: ".svg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAvatar(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAvatar(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "empty", input: "", wantErr: false},
		{name: "https", input: "https://api.openai.com/v1", wantErr: false},
		{name: "http with port", input: "http://localhost:11434/v1", wantErr: false},
		{name: "no scheme", input: "api.openai.com", wantErr: true},
		{name: "ftp", input: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpoint(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEndpoint(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePlayerName(t *testing.T) {
	if err := ValidatePlayerName("玩家"); err != nil {
		t.Errorf("ValidatePlayerName() unexpected error = %v", err)
	}
	if err := ValidatePlayerName(strings.Repeat("玩", 32)); err != nil {
		t.Errorf("32 runes should be accepted, got %v", err)
	}
	if err := ValidatePlayerName(strings.Repeat("玩", 33)); err == nil {
		t.Error("33 runes should be rejected")
	}
}

func TestValidateOpponent(t *testing.T) {
	valid := func() *models.Opponent {
		return &models.Opponent{
			Name:        "terminator",
			DisplayName: "终结者",
			Difficulty:  models.DifficultyNormal,
			Model: &models.ExternalModelConfig{
				Provider: models.ProviderOpenAI,
				Endpoint: "https://api.openai.com/v1",
			},
		}
	}

	tests := []struct {
		name      string
		mutate    func(o *models.Opponent)
		wantField string
	}{
		{name: "valid", mutate: func(o *models.Opponent) {}},
		{name: "no model config", mutate: func(o *models.Opponent) { o.Model = nil }},
		{name: "missing display name", mutate: func(o *models.Opponent) { o.DisplayName = "  " }, wantField: "display_name"},
		{name: "unknown difficulty", mutate: func(o *models.Opponent) { o.Difficulty = "hard" }, wantField: "difficulty"},
		{name: "unknown provider", mutate: func(o *models.Opponent) { o.Model.Provider = "anthropic" }, wantField: "provider"},
		{name: "bad host", mutate: func(o *models.Opponent) { o.Model.Endpoint = "not a url" }, wantField: "host"},
		{name: "long description", mutate: func(o *models.Opponent) { o.DescriptionEn = strings.Repeat("x", 501) }, wantField: "description_en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid()
			tt.mutate(o)
			err := ValidateOpponent(o)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateOpponent() unexpected error = %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateOpponent() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidateOpponent() field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}
