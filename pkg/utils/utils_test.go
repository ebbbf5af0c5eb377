package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	valid := []string{"case-1", "4f1c2b9e-0d7a-4b7e-9d3c-1f2e3a4b5c6d", "alice@example.com", "proc:12:7", "a"}
	for _, id := range valid {
		assert.NoError(t, ValidateIdentifier("case id", id), id)
	}

	invalid := []string{"", "-leading", "has space", "semi;colon", strings.Repeat("a", 129)}
	for _, id := range invalid {
		assert.Error(t, ValidateIdentifier("case id", id), id)
	}

	assert.EqualError(t, ValidateIdentifier("item id", ""), "item id is required")
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: 30},
		{raw: "5", want: 5},
		{raw: "0", want: 0},
		{raw: "-3", want: -3},
		{raw: "1.5", wantErr: true},
		{raw: "soon", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSeconds(tt.raw, 30)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("console to stderr", func(t *testing.T) {
		logger, err := NewLogger(LoggerConfig{Level: "debug", OutputPath: "stderr", Format: "console"})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(-1))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger, err := NewLogger(LoggerConfig{Level: "verbose", Format: "json"})
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(-1))
		assert.True(t, logger.Core().Enabled(0))
	})

	t.Run("file sink creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "caseflow.log")
		logger, err := NewLogger(LoggerConfig{Level: "info", OutputPath: path, Format: "json"})
		require.NoError(t, err)

		logger.Info("hello")
		require.NoError(t, logger.Sync())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"hello"`)
	})
}
