// Package config loads the TOML service configuration with sensible
// defaults; a missing config file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

const (
	defaultPort      = 5000
	defaultLogLevel  = "info"
	defaultAuditFile = "~/.veil/audit.log"
	defaultCacheFile = "~/.veil/lookups.bin"
)

// Server holds the HTTP service settings.
type Server struct {
	Port int `toml:"port"`
}

// Batch holds the file-processing settings.
type Batch struct {
	// Jobs is the worker count for parallel documents; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`
}

// Lookup holds the dictionary settings.
type Lookup struct {
	// Dir is an optional directory of term list files.
	Dir string `toml:"dir"`
	// CacheFile is the compiled msgpack cache written by compile-lookups.
	CacheFile string `toml:"cache_file"`
}

// Detectors holds detector toggles applied to every request.
type Detectors struct {
	Disabled []string `toml:"disabled"`
}

// Resolver holds conflict-resolution settings.
type Resolver struct {
	// Connectors are the characters allowed between fused same-tag
	// annotations.
	Connectors string `toml:"connectors"`
}

// Log holds logging settings.
type Log struct {
	Level     string `toml:"level"`
	AuditFile string `toml:"audit_file"`
}

// Config is the full service configuration.
type Config struct {
	Server    Server    `toml:"server"`
	Batch     Batch     `toml:"batch"`
	Lookup    Lookup    `toml:"lookup"`
	Detectors Detectors `toml:"detectors"`
	Resolver  Resolver  `toml:"resolver"`
	Log       Log       `toml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   Server{Port: defaultPort},
		Resolver: Resolver{Connectors: " \t\n-"},
		Log:      Log{Level: defaultLogLevel, AuditFile: defaultAuditFile},
		Lookup:   Lookup{CacheFile: defaultCacheFile},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".veil", "config.toml"), nil
}

// Load reads the TOML file at path on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg.finalize()
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.finalize()
}

func (c Config) finalize() (Config, error) {
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if _, err := safecast.Conv[uint16](c.Server.Port); err != nil {
		return Config{}, fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Resolver.Connectors == "" {
		c.Resolver.Connectors = " \t\n-"
	}
	c.Log.AuditFile = expandHome(c.Log.AuditFile)
	c.Lookup.CacheFile = expandHome(c.Lookup.CacheFile)
	c.Lookup.Dir = expandHome(c.Lookup.Dir)
	return c, nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
