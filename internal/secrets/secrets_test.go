// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvPasscode, "")
	t.Setenv(EnvOpenAI, "")
	t.Setenv(EnvNCBI, "")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyOpenAI, "  sk-abc123  \n")
				writeFile(t, dir, KeyPasscode, "letmein\n")
				return dir
			},
			want: map[string]string{
				KeyOpenAI:   "sk-abc123",
				KeyPasscode: "letmein",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty and hidden files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyNCBI, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, ".hidden", "nope")
				return dir
			},
			want: map[string]string{KeyNCBI: "valid-key"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, KeyOpenAI, "from-file")
	t.Setenv(EnvOpenAI, "from-env")

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", got[KeyOpenAI])
}

func TestLoadEnvWithoutDirectory(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPasscode, "gate")

	got, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyPasscode: "gate"}, got)
}
