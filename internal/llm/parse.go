package llm

import (
	"encoding/json"
	"errors"
	"strings"

	"rpsarena/internal/models"
)

// moveTokens are the lexemes recognised in a completion, English and Chinese
var moveTokens = []struct {
	token string
	move  models.Move
}{
	{"rock", models.Rock},
	{"paper", models.Paper},
	{"scissors", models.Scissors},
	{"石头", models.Rock},
	{"剪刀", models.Scissors},
	{"布", models.Paper},
}

// ParseMove returns the move whose token appears first in text.
// ok is false when no token is present.
func ParseMove(text string) (models.Move, bool) {
	text = strings.ToLower(text)

	best := -1
	var move models.Move
	for _, t := range moveTokens {
		i := strings.Index(text, t.token)
		if i < 0 {
			continue
		}
		if best < 0 || i < best {
			best = i
			move = t.move
		}
	}
	return move, best >= 0
}

// GeneratedProfile is the persona text a model writes for itself
type GeneratedProfile struct {
	DisplayName   string `json:"display_name"`
	DisplayNameEn string `json:"display_name_en"`
	Description   string `json:"description"`
	DescriptionEn string `json:"description_en"`
}

// extractJSONObject returns the outermost {...} in s, tolerating code fences
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop the language tag
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(s, "```")

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	end := strings.LastIndexByte(s, '}')
	if end <= start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}

func parseProfile(content string) (GeneratedProfile, error) {
	var p GeneratedProfile
	obj := extractJSONObject(content)
	if obj == "" {
		return p, errors.New("unparseable response: no JSON object")
	}
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return p, errors.New("unparseable response: " + err.Error())
	}
	if p.DisplayName == "" && p.DisplayNameEn == "" {
		return p, errors.New("unparseable response: no display name")
	}
	return p, nil
}
