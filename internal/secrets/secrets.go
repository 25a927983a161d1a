// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of
// plain-text files. Each file holds one secret: the filename is the key
// name and the trimmed file contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Key file names recognised by the CLI.
const (
	AnthropicAPIKey       = "anthropic-api-key"
	GeminiAPIKey          = "gemini-api-key"
	OpenAlexEmail         = "openalex-email"
	SemanticScholarAPIKey = "semantic-scholar-api-key"
)

// DefaultDir is where the CLI looks for secrets.
const DefaultDir = ".secrets/"

// Store is a loaded set of secrets.
type Store map[string]string

// Load reads all files in dir. A missing directory is not an error and
// yields an empty store. Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store)
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
			logger.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Or returns current when it is non-empty and the stored secret otherwise.
// Explicit configuration always wins over the secrets directory.
func (s Store) Or(key, current string) string {
	if current != "" {
		return current
	}
	return s[key]
}
