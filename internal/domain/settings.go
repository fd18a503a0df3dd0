package domain

import "fmt"

// Settings are the user's presentation preferences. The core only stores and
// validates them.
type Settings struct {
	Theme     string `json:"theme"`
	Language  string `json:"language"`
	ColorUnit string `json:"colorUnit"`
}

var (
	themes     = []string{"system", "light", "dark"}
	languages  = []string{"system", "en", "nl", "de", "fr"}
	colorUnits = []string{"EBC", "SRM", "Lovibond"}
)

// DefaultSettings is what a fresh install reports.
func DefaultSettings() Settings {
	return Settings{Theme: "system", Language: "system", ColorUnit: "EBC"}
}

// WithDefaults fills empty fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	def := DefaultSettings()
	if s.Theme == "" {
		s.Theme = def.Theme
	}
	if s.Language == "" {
		s.Language = def.Language
	}
	if s.ColorUnit == "" {
		s.ColorUnit = def.ColorUnit
	}
	return s
}

// Validate rejects options outside the recognized sets.
func (s Settings) Validate() error {
	if !oneOf(s.Theme, themes) {
		return fmt.Errorf("%w: theme %q", ErrInvalidInput, s.Theme)
	}
	if !oneOf(s.Language, languages) {
		return fmt.Errorf("%w: language %q", ErrInvalidInput, s.Language)
	}
	if !oneOf(s.ColorUnit, colorUnits) {
		return fmt.Errorf("%w: color unit %q", ErrInvalidInput, s.ColorUnit)
	}
	return nil
}

// Credentials authenticate against the recipe API. The core treats them as opaque.
type Credentials struct {
	UserID string `json:"userId"`
	APIKey string `json:"apiKey"`
}

// Complete reports whether both halves are present.
func (c Credentials) Complete() bool {
	return c.UserID != "" && c.APIKey != ""
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
