package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"coleta/internal/mapview"
	"coleta/internal/model"
)

// RegionPrefs is the last searched region.
type RegionPrefs struct {
	UF   string `json:"uf"`
	City string `json:"city"`
}

// UIPreferences stores persisted app preferences.
type UIPreferences struct {
	MapDelta   float64     `json:"map_delta"`
	HideMap    bool        `json:"hide_map"`
	LastRegion RegionPrefs `json:"last_region"`
}

func defaultUIPreferences() UIPreferences {
	return UIPreferences{MapDelta: mapview.DefaultDelta}
}

func (p UIPreferences) region() model.RegionQuery {
	return model.RegionQuery{UF: p.LastRegion.UF, City: p.LastRegion.City}
}

// DefaultPrefsPath returns ~/.coleta/ui_prefs.json.
func DefaultPrefsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".coleta", "ui_prefs.json"), nil
}

func loadUIPreferences(path string) UIPreferences {
	if path == "" {
		return defaultUIPreferences()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaultUIPreferences()
	}

	prefs := defaultUIPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return defaultUIPreferences()
	}
	if prefs.MapDelta < mapview.MinDelta || prefs.MapDelta > mapview.MaxDelta {
		prefs.MapDelta = mapview.DefaultDelta
	}
	return prefs
}

func saveUIPreferences(path string, prefs UIPreferences) error {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
