// Package manifest handles zzed.toml project configuration.
//
// A project directory holds a zzed.toml naming the game database and the
// server and log settings. Values from the file can be overridden by
// ZZED_* environment variables, which commands in turn override with
// flags.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// FileName is the name of the project configuration file.
const FileName = "zzed.toml"

// DefaultAddr is the listen address of `zzed serve` when none is configured.
const DefaultAddr = ":4567"

// Config represents a zzed.toml project configuration.
type Config struct {
	Database Database `toml:"database"`
	Server   Server   `toml:"server"`
	Log      Log      `toml:"log"`

	// Dir is the directory containing the zzed.toml file (set at load time).
	Dir string `toml:"-"`
}

// Database locates the game database.
type Database struct {
	// Path is relative to Dir unless absolute.
	Path string `toml:"path" env:"ZZED_DATABASE"`
}

// Server configures `zzed serve`.
type Server struct {
	Addr string `toml:"addr" env:"ZZED_ADDR"`
}

// Log configures the commonlog backend.
type Log struct {
	Verbosity int    `toml:"verbosity" env:"ZZED_LOG_VERBOSITY"`
	File      string `toml:"file" env:"ZZED_LOG_FILE"`
}

// Default returns the configuration used when no zzed.toml exists.
func Default() *Config {
	return &Config{
		Server: Server{Addr: DefaultAddr},
	}
}

// Load parses the zzed.toml file in the given directory. Missing values
// keep their defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a zzed.toml file,
// then loads and returns the configuration. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Resolve finds the configuration for startDir: the nearest zzed.toml or
// the defaults, with environment overrides applied.
func Resolve(startDir string) (*Config, error) {
	c, err := FindAndLoad(startDir)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = Default()
		if c.Dir, err = filepath.Abs(startDir); err != nil {
			return nil, err
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overrides values with the ZZED_* environment variables that are
// set.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// DatabasePath returns the absolute path of the game database, or "" when
// none is configured.
func (c *Config) DatabasePath() string {
	if c.Database.Path == "" || filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(c.Dir, c.Database.Path)
}
