// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for sirseer-ingest with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Environment variables
//  2. Configuration file
//  3. Built-in defaults
//
// The package supports YAML configuration files and provides automatic
// discovery of configuration in standard locations.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	relaierrors "github.com/sirseerhq/sirseer-ingest/internal/errors"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .sirseer-ingest.yaml (current directory)
//   - .sirseer-ingest.yml (current directory)
//   - ~/.sirseer/ingest.yaml
//
// Environment variables are applied after loading the config file, allowing
// runtime overrides. The returned configuration has been validated.
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".sirseer-ingest.yaml",
			".sirseer-ingest.yml",
			filepath.Join(os.Getenv("HOME"), ".sirseer", "ingest.yaml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Database.File = expandPath(cfg.Database.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Malformed dates are reported; other malformed values are ignored.
func applyEnvOverrides(cfg *Config) error {
	if endpoint := os.Getenv("GITHUB_API_ENDPOINT"); endpoint != "" {
		cfg.GitHub.APIEndpoint = endpoint
	}
	if owner := os.Getenv("SIRSEER_OWNER"); owner != "" {
		cfg.GitHub.Owner = owner
	}
	if repo := os.Getenv("SIRSEER_REPO"); repo != "" {
		cfg.GitHub.Repo = repo
	}
	if verify := os.Getenv("SIRSEER_VERIFY_TLS"); verify != "" {
		cfg.GitHub.VerifyTLS = parseBool(verify)
	}

	if start := os.Getenv("SIRSEER_START_DATE"); start != "" {
		d, err := ParseDate(start)
		if err != nil {
			return fmt.Errorf("SIRSEER_START_DATE: %w: %w", relaierrors.ErrInvalidConfig, err)
		}
		cfg.Filters.StartDate = d
	}
	if end := os.Getenv("SIRSEER_END_DATE"); end != "" {
		d, err := ParseDate(end)
		if err != nil {
			return fmt.Errorf("SIRSEER_END_DATE: %w: %w", relaierrors.ErrInvalidConfig, err)
		}
		cfg.Filters.EndDate = d
	}
	if closed := os.Getenv("SIRSEER_ONLY_CLOSED"); closed != "" {
		cfg.Filters.OnlyClosed = parseBool(closed)
	}
	if merged := os.Getenv("SIRSEER_ONLY_MERGED"); merged != "" {
		cfg.Filters.OnlyMerged = parseBool(merged)
	}
	if labels, ok := os.LookupEnv("SIRSEER_REQUIRED_LABELS"); ok {
		cfg.Filters.RequiredLabels = ParseLabelList(labels)
	}

	if file := os.Getenv("SIRSEER_DATABASE_FILE"); file != "" {
		cfg.Database.File = file
	}
	if level := os.Getenv("SIRSEER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s == "yes" || s == "on"
}

// ResolveToken returns the inline token if set, otherwise the value of the
// environment variable named by TokenEnv.
func (c *Config) ResolveToken() string {
	if token := strings.TrimSpace(c.GitHub.Token); token != "" {
		return token
	}
	if c.GitHub.TokenEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.GitHub.TokenEnv))
}

// Window returns the configured date range.
func (c *Config) Window() (start, end time.Time) {
	return c.Filters.StartDate.Time, c.Filters.EndDate.Time
}

// Validate checks if the configuration contains valid values. It should be
// called after loading configuration to catch invalid settings early.
// Every failure wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", relaierrors.ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.GitHub.APIEndpoint == "" {
		return invalid("GitHub API endpoint cannot be empty")
	}
	if c.ResolveToken() == "" {
		return invalid("GitHub token is not set (github.token or $%s)", c.GitHub.TokenEnv)
	}
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return invalid("github.owner and github.repo are required")
	}
	if c.GitHub.Timeout <= 0 {
		return invalid("github.timeout must be positive, got: %s", c.GitHub.Timeout)
	}
	if c.GitHub.MaxRetries < 0 {
		return invalid("github.max_retries cannot be negative, got: %d", c.GitHub.MaxRetries)
	}
	if c.Filters.StartDate.IsZero() || c.Filters.EndDate.IsZero() {
		return invalid("filters.start_date and filters.end_date are required")
	}
	if c.Filters.EndDate.Before(c.Filters.StartDate.Time) {
		return invalid("filters.end_date %s is before start_date %s",
			c.Filters.EndDate.Format(time.RFC3339), c.Filters.StartDate.Format(time.RFC3339))
	}
	if c.Database.File == "" {
		return invalid("database.file cannot be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return invalid("unknown log format %q", c.Logging.Format)
	}
	return nil
}
