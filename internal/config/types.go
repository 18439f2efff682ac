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

// Package config types define the configuration structures used throughout
// sirseer-ingest. These types represent settings that can be loaded from
// YAML configuration files or environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for sirseer-ingest.
// It is loaded once at startup and passed by value into constructors.
type Config struct {
	GitHub   GitHubConfig   `yaml:"github"`
	Filters  FiltersConfig  `yaml:"filters"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GitHubConfig contains GitHub-specific settings including the API endpoint,
// credentials and the repository to ingest. A custom endpoint allows
// GitHub Enterprise deployments.
type GitHubConfig struct {
	APIEndpoint string        `yaml:"api_endpoint"`
	Token       string        `yaml:"token"`
	TokenEnv    string        `yaml:"token_env"`
	Owner       string        `yaml:"owner"`
	Repo        string        `yaml:"repo"`
	VerifyTLS   bool          `yaml:"verify_tls"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

// FiltersConfig selects which pull requests are ingested.
type FiltersConfig struct {
	StartDate      Date      `yaml:"start_date"`
	EndDate        Date      `yaml:"end_date"`
	OnlyClosed     bool      `yaml:"only_closed"`
	OnlyMerged     bool      `yaml:"only_merged"`
	RequiredLabels LabelList `yaml:"required_labels"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	File string `yaml:"file"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Date is a UTC instant parsed from a calendar date or an RFC 3339 timestamp.
// A bare date means midnight at the start of that day.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses s using the accepted layouts. Timestamps without a zone are
// taken as UTC.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t.UTC()}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
}

// UnmarshalYAML reads the raw scalar so YAML timestamp resolution does not
// interfere with the accepted layouts.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", value.Line)
	}
	if value.Value == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = parsed
	return nil
}

// LabelList is a set of label names. In YAML it may be written either as a
// comma-separated string or as a sequence.
type LabelList []string

// ParseLabelList splits a comma-separated list, trimming blanks.
func ParseLabelList(s string) LabelList {
	var labels LabelList
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			labels = append(labels, part)
		}
	}
	return labels
}

// UnmarshalYAML accepts both the string and the sequence form.
func (l *LabelList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*l = ParseLabelList(value.Value)
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*l = ParseLabelList(strings.Join(raw, ","))
		return nil
	default:
		return fmt.Errorf("line %d: required_labels must be a string or a list", value.Line)
	}
}

// DefaultConfig returns a Config with sensible defaults. Only the repository
// coordinates, the date window and the token have no usable default.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIEndpoint: "https://api.github.com",
			TokenEnv:    "GITHUB_TOKEN",
			VerifyTLS:   true,
			Timeout:     30 * time.Second,
			MaxRetries:  10,
		},
		Filters: FiltersConfig{
			OnlyMerged: true,
		},
		Database: DatabaseConfig{
			File: "prs.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
