// Package validation checks admin and player input before it reaches the services
package validation

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"rpsarena/internal/models"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

const (
	maxNameLength        = 64
	maxDisplayNameLength = 100
	maxDescriptionLength = 500
	maxPlayerNameLength  = 32
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateOpponentName checks the unique slug that identifies an opponent
func ValidateOpponentName(name string) error {
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > maxNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", maxNameLength)}
	}
	if !slugRegex.MatchString(name) {
		return ValidationError{Field: "name", Message: "name may only contain lowercase letters, digits and hyphens"}
	}
	return nil
}

// ValidateDisplayName checks a display name, which is required
func ValidateDisplayName(displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return ValidationError{Field: "display_name", Message: "display name is required"}
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLength {
		return ValidationError{Field: "display_name", Message: fmt.Sprintf("display name must be at most %d characters", maxDisplayNameLength)}
	}
	return nil
}

// ValidateAvatar accepts an empty value or a bare .svg file name
func ValidateAvatar(avatar string) error {
	if avatar == "" {
		return nil
	}
	if strings.ContainsAny(avatar, `/\`) || path.Base(avatar) != avatar || strings.HasPrefix(avatar, ".") {
		return ValidationError{Field: "avatar", Message: "avatar must be a file name"}
	}
	if !strings.HasSuffix(strings.ToLower(avatar), ".svg") {
		return ValidationError{Field: "avatar", Message: "avatar must be an .svg file"}
	}
	return nil
}

// ValidateEndpoint accepts an empty value or an absolute http(s) URL
func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ValidationError{Field: "host", Message: "host must be an http or https URL"}
	}
	return nil
}

// ValidatePlayerName limits the length of a player's chosen name
func ValidatePlayerName(name string) error {
	if utf8.RuneCountInString(name) > maxPlayerNameLength {
		return ValidationError{Field: "playerName", Message: fmt.Sprintf("player name must be at most %d characters", maxPlayerNameLength)}
	}
	return nil
}

// ValidateLogin checks that both credentials were supplied
func ValidateLogin(username, password string) error {
	if username == "" || password == "" {
		return ValidationError{Field: "username", Message: "username and password are required"}
	}
	return nil
}

// ValidateOpponent checks a complete opponent before it is saved
func ValidateOpponent(o *models.Opponent) error {
	if err := ValidateOpponentName(o.Name); err != nil {
		return err
	}
	if err := ValidateDisplayName(o.DisplayName); err != nil {
		return err
	}
	if utf8.RuneCountInString(o.DisplayNameEn) > maxDisplayNameLength {
		return ValidationError{Field: "display_name_en", Message: fmt.Sprintf("display name must be at most %d characters", maxDisplayNameLength)}
	}
	if err := ValidateAvatar(o.Avatar); err != nil {
		return err
	}
	if _, err := models.ParseDifficulty(string(o.Difficulty)); err != nil {
		return ValidationError{Field: "difficulty", Message: err.Error()}
	}
	for field, text := range map[string]string{"description": o.Description, "description_en": o.DescriptionEn} {
		if utf8.RuneCountInString(text) > maxDescriptionLength {
			return ValidationError{Field: field, Message: fmt.Sprintf("description must be at most %d characters", maxDescriptionLength)}
		}
	}
	if o.Model != nil {
		if _, err := models.ParseProvider(string(o.Model.Provider)); err != nil {
			return ValidationError{Field: "provider", Message: err.Error()}
		}
		if err := ValidateEndpoint(o.Model.Endpoint); err != nil {
			return err
		}
	}
	return nil
}
