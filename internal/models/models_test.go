package models

import (
	"testing"
	"unicode/utf8"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Move
		wantErr bool
	}{
		{name: "rock", input: "rock", want: Rock},
		{name: "paper upper case", input: "PAPER", want: Paper},
		{name: "scissors padded", input: "  scissors ", want: Scissors},
		{name: "empty", input: "", wantErr: true},
		{name: "chinese is not a wire form", input: "石头", wantErr: true},
		{name: "lizard", input: "lizard", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMove(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMove(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMove(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		input   string
		want    Difficulty
		wantErr bool
	}{
		{input: "normal", want: DifficultyNormal},
		{input: "Chaos", want: DifficultyChaos},
		{input: "hard", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDifficulty(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDifficulty(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDifficulty(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExternalModelConfigUsable(t *testing.T) {
	tests := []struct {
		name string
		cfg  *ExternalModelConfig
		want bool
	}{
		{name: "nil config", cfg: nil, want: false},
		{name: "empty key", cfg: &ExternalModelConfig{Model: "gpt-4o-mini"}, want: false},
		{name: "whitespace key", cfg: &ExternalModelConfig{APIKey: "   "}, want: false},
		{name: "placeholder key", cfg: &ExternalModelConfig{APIKey: "sk-your-api-key-here"}, want: false},
		{name: "real key", cfg: &ExternalModelConfig{APIKey: "sk-abc123"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Usable(); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExternalModelConfigWithDefaults(t *testing.T) {
	cfg := ExternalModelConfig{APIKey: "sk-abc"}.WithDefaults()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("Provider = %v, want %v", cfg.Provider, ProviderOpenAI)
	}
	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("Endpoint = %q, want %q", cfg.Endpoint, DefaultEndpoint)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}

	azure := ExternalModelConfig{Provider: ProviderAzure, APIKey: "k"}.WithDefaults()
	if azure.Endpoint != "" {
		t.Errorf("azure endpoint should not be defaulted, got %q", azure.Endpoint)
	}
}

func TestMaskedAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "", want: ""},
		{key: "abc", want: "***"},
		{key: "sk-1234567890", want: "********7890"},
		{key: "密钥", want: "**"},
		{key: "sk-密钥密钥密钥", want: "********密钥密钥"},
		{key: "sk-abc€€", want: "********bc€€"},
	}

	for _, tt := range tests {
		cfg := &ExternalModelConfig{APIKey: tt.key}
		got := cfg.MaskedAPIKey()
		if got != tt.want {
			t.Errorf("MaskedAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("MaskedAPIKey(%q) = %q is not valid UTF-8", tt.key, got)
		}
	}
}

func TestGameSessionRoundsPlayed(t *testing.T) {
	s := GameSession{PlayerWins: 2, AIWins: 1, Draws: 1, Status: StatusPlaying}
	if got := s.RoundsPlayed(); got != 4 {
		t.Errorf("RoundsPlayed() = %d, want 4", got)
	}
	if s.IsFinished() {
		t.Error("playing session reported finished")
	}
	s.Status = StatusFinished
	if !s.IsFinished() {
		t.Error("finished session not reported finished")
	}
}
