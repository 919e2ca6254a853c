// Package config provides configuration loading for tagfinder.
//
// Configuration is optional. Without a file, Default() is used as is. With
// one (--config), the YAML file is merged over the defaults, and explicit
// command-line flags win over both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tagfinder/types"
)

// Config is the tagfinder configuration
type Config struct {
	// Database is the path of the SQLite tag catalog.
	Database string `yaml:"database"`

	// Recursive makes list, search and index descend into subdirectories.
	Recursive bool `yaml:"recursive"`

	// Mode is the default tag match mode, "any" or "all".
	Mode string `yaml:"mode"`

	// Format selects the output format: text, json or yaml.
	Format string `yaml:"format"`

	// LogFile is where debug records go when --debug is set.
	LogFile string `yaml:"log_file"`

	// MaxFileSize caps how many bytes are read from one image. Zero disables the cap.
	MaxFileSize int64 `yaml:"max_file_size"`

	// KeepGoing skips unreadable images instead of aborting.
	KeepGoing bool `yaml:"keep_going"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Database: DefaultDatabasePath(),
		Mode:     "any",
		Format:   "text",
		LogFile:  "tagfinder.log",
	}
}

// LoadFile loads configuration from a specific file path, merged over the defaults
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "any", "all":
	default:
		return &types.InvalidArgumentError{Name: "mode", Value: c.Mode}
	}

	switch strings.ToLower(c.Format) {
	case "text", "json", "yaml":
	default:
		return &types.InvalidArgumentError{Name: "format", Value: c.Format}
	}

	if c.MaxFileSize < 0 {
		return &types.InvalidArgumentError{Name: "max_file_size", Value: fmt.Sprint(c.MaxFileSize)}
	}
	return nil
}

// expandPaths expands ${HOME} and similar variables and a leading ~ in paths
func (c *Config) expandPaths() {
	c.Database = expandPath(c.Database)
	c.LogFile = expandPath(c.LogFile)
}

func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

// DefaultDatabasePath returns the default path for the catalog, next to the executable
func DefaultDatabasePath() string {
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "tags.db"
	}
	return filepath.Join(filepath.Dir(exePath), "tags.db")
}
