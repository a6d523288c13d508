// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value. Environment variables
// override file values so deployments without a secrets directory still
// work. Secret values are never logged.
//
// Supported key files: app-passcode, openai-api-key, ncbi-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key names and their environment overrides.
const (
	KeyPasscode = "app-passcode"
	KeyOpenAI   = "openai-api-key"
	KeyNCBI     = "ncbi-api-key"
	EnvPasscode = "APP_PASSWORD"
	EnvOpenAI   = "OPENAI_API_KEY"
	EnvNCBI     = "NCBI_API_KEY"
)

// envOverrides maps file keys to their environment variable names.
var envOverrides = map[string]string{
	KeyPasscode: EnvPasscode,
	KeyOpenAI:   EnvOpenAI,
	KeyNCBI:     EnvNCBI,
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents, with environment overrides applied on top. A missing directory
// or missing files are not errors; Load returns whatever it found.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	loaded := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			loaded[name] = value
		}
	}

	for key, env := range envOverrides {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			loaded[key] = v
		}
	}

	return loaded, nil
}
