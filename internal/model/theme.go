package model

import (
	"fmt"
	"strings"
)

// Theme is the named color theme of a profile.
type Theme string

const (
	ThemeOcean  Theme = "ocean"
	ThemeSunset Theme = "sunset"
	ThemeForest Theme = "forest"

	DefaultTheme = ThemeOcean
)

// ThemeOption describes a selectable theme.
type ThemeOption struct {
	ID    Theme  `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var themeOptions = []ThemeOption{
	{ID: ThemeOcean, Label: "Quantum Blue", Color: "#00d4ff"},
	{ID: ThemeSunset, Label: "Neon Flare", Color: "#ff4d4d"},
	{ID: ThemeForest, Label: "Hyper Emerald", Color: "#00ff88"},
}

// Themes returns the selectable themes in display order.
func Themes() []ThemeOption {
	out := make([]ThemeOption, len(themeOptions))
	copy(out, themeOptions)
	return out
}

func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	for _, o := range themeOptions {
		if o.ID == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Profile holds the per-profile preferences.
type Profile struct {
	ID           string `json:"id"`
	CurrentTheme Theme  `json:"current_theme"`
}
