package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	// DataDir is the root of the per-jurisdiction data layout:
	// <DataDir>/<jurisdiction>/{case_html,case_json,case_json_cleaned}.
	DataDir string `json:"data_dir,omitempty"`

	// TaxonomyPath points to the charge taxonomy reference JSON.
	// A missing or empty taxonomy is a fatal configuration error for a run.
	TaxonomyPath string `json:"taxonomy_path,omitempty"`

	// MotionsPath points to the evidentiary-motions phrase list JSON.
	// Empty means use the built-in default list.
	MotionsPath string `json:"motions_path,omitempty"`

	// LogMode selects the zap preset: "dev" (default) or "prod".
	LogMode string `json:"log_mode,omitempty"`

	// LogDir, when set, adds a timestamped log file per process start.
	LogDir string `json:"log_dir,omitempty"`

	// DBMaxOpenConns limits open database connections. If set to 1, all
	// database access is serialized. 0 means use the sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle database connections. 0 means default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration rooted at baseDir.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		DataDir:      filepath.Join(baseDir, "data"),
		TaxonomyPath: filepath.Join(baseDir, "resources", "charge-taxonomy.json"),
		LogMode:      "dev",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns the default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	cfg := DefaultConfig(baseDir)

	data, err := os.ReadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// JurisdictionDir returns the data directory for one jurisdiction.
func (c *Config) JurisdictionDir(jurisdiction string) string {
	return filepath.Join(c.DataDir, jurisdiction)
}
