package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// HistoryConfig configures the sqlite run history
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty" validate:"required_if=Enabled true"`
}

// NewDefaultHistoryConfig creates default history configuration
func NewDefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Enabled: true,
		DBPath:  DefaultHistoryPath(),
	}
}

// DefaultHistoryPath returns $XDG_DATA_HOME/jshunter/history.db
func DefaultHistoryPath() string {
	return filepath.Join(xdg.DataHome, AppName, DefaultHistoryFile)
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/jshunter
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
