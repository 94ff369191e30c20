package tuning

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultTuningPath returns the default TOML tuning file path.
func DefaultTuningPath() string {
	return filepath.Join(XDGConfigHome(), "gliss", "tuning.toml")
}

// DefaultDictionaryPath builds the default dictionary path for a language.
func DefaultDictionaryPath(lang string) string {
	return filepath.Join(XDGConfigHome(), "gliss", "dictionaries", lang+".txt")
}

// DefaultDictionaryDir returns the default directory for dictionaries.
func DefaultDictionaryDir() string {
	return filepath.Join(XDGConfigHome(), "gliss", "dictionaries")
}

// DefaultLayoutDir returns the directory for layout JSON files.
func DefaultLayoutDir() string {
	return filepath.Join(XDGConfigHome(), "gliss", "layouts")
}

// DefaultDBPath returns the default path for the SQLite history database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), "gliss", "gliss.db")
}

// DefaultWordfreqCacheDir returns the cache directory for wordfreq wheels.
func DefaultWordfreqCacheDir() string {
	return filepath.Join(XDGDataHome(), "gliss", "wordfreq")
}
