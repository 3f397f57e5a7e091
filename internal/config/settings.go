package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings is the top-level geninst.yaml configuration.
type Settings struct {
	// MaxDepth is the recursion budget for variable and wildcard nodes.
	MaxDepth int `yaml:"max_depth"`

	// Seed seeds the candidate pool. Zero means a random seed.
	Seed uint64 `yaml:"seed,omitempty"`

	// Tries is how many randomized attempts the facade makes per request.
	Tries int `yaml:"tries"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// Universe lists class universe files, relative to the settings file.
	Universe []string `yaml:"universe,omitempty"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() *Settings {
	return &Settings{
		MaxDepth: MaxGenericDepth,
		Tries:    DefaultTries,
		LogLevel: "warn",
	}
}

// LoadSettings reads and validates a settings file. Universe paths are
// resolved relative to the directory of the file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	s, err := ParseSettings(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, u := range s.Universe {
		if !filepath.IsAbs(u) {
			s.Universe[i] = filepath.Join(dir, u)
		}
	}
	return s, nil
}

// ParseSettings decodes settings from YAML, filling defaults for omitted fields.
func ParseSettings(data []byte) (*Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings for consistency.
func (s *Settings) Validate() error {
	var errs []error
	if s.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", s.MaxDepth))
	}
	if s.Tries < 1 {
		errs = append(errs, fmt.Errorf("tries must be at least 1, got %d", s.Tries))
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	for _, u := range s.Universe {
		if !HasUniverseExt(u) {
			errs = append(errs, fmt.Errorf("universe file %q must have one of the extensions %v", u, UniverseFileExtensions))
		}
	}
	return errors.Join(errs...)
}

// Level returns the slog level of the settings.
func (s *Settings) Level() slog.Level {
	l, _ := ParseLevel(s.LogLevel)
	return l
}

// ParseLevel converts a level name to a slog level. The empty string is warn.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("unknown log level %q", name)
}

// HasUniverseExt checks if a path has a recognized universe file extension.
func HasUniverseExt(path string) bool {
	for _, ext := range UniverseFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
