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

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/sirseerhq/sirseer-ingest/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		wantLevel zapcore.Level
	}{
		{"json info", config.LoggingConfig{Level: "info", Format: "json"}, zapcore.InfoLevel},
		{"console debug", config.LoggingConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{"json warn", config.LoggingConfig{Level: "warn", Format: "json"}, zapcore.WarnLevel},
		{"upper case level", config.LoggingConfig{Level: "ERROR", Format: "console"}, zapcore.ErrorLevel},
		{"invalid level falls back to info", config.LoggingConfig{Level: "loud", Format: "json"}, zapcore.InfoLevel},
		{"empty config uses defaults", config.LoggingConfig{}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestNewFromDefaultConfig(t *testing.T) {
	logger, err := New(config.DefaultConfig().Logging)
	require.NoError(t, err)

	// Should not panic
	logger.Info("test message")
	logger.Debug("filtered out")
}
