package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file from the working directory if one exists.
// Missing files are not an error; explicit environment variables win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// GetAcoustIDKey returns the AcoustID API key, if configured. There is no
// built-in default key; recognition is unavailable without one.
func GetAcoustIDKey() string {
	return os.Getenv("ACOUSTID_API_KEY")
}

// GetMusicDir returns the directory to process when none is given on the
// command line: the MUSICREN_DIR variable, the saved settings value, or the
// current working directory.
func GetMusicDir() string {
	if dir := os.Getenv("MUSICREN_DIR"); dir != "" {
		return dir
	}
	if dir := LoadSettings().MusicDirectory; dir != "" {
		return dir
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

// UserSettings represents the user's persisted preferences
type UserSettings struct {
	MusicDirectory string `json:"musicDirectory"`
}

// SettingsFilePath returns the path to the settings file
func SettingsFilePath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".musicren-settings.json")
}

// LoadSettings reads the persisted settings, returning zero-value settings
// when the file is missing or unreadable.
func LoadSettings() UserSettings {
	var settings UserSettings
	data, err := os.ReadFile(SettingsFilePath())
	if err != nil {
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return UserSettings{}
	}
	return settings
}

// SaveSettings persists the settings to the user's home directory.
func SaveSettings(settings UserSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(SettingsFilePath(), data, 0o644)
}
