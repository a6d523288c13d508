// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/dmossmd/ed-copilot/pkg/types"
)

// SearchFile is the on-disk representation of a search and its results. A
// clinician can save a retrieval run to a file and reload it later without
// re-querying PubMed.
type SearchFile struct {
	Question   string                 `yaml:"question"`
	Candidates []string               `yaml:"candidates"`
	RetMax     int                    `yaml:"retmax"`
	Results    []types.ArticleSummary `yaml:"results"`
	Abstracts  map[string]string      `yaml:"abstracts,omitempty"`
	Timestamp  time.Time              `yaml:"timestamp"`
}

// WriteSearchFile saves a question, its candidate terms, and the retrieved
// summaries to a YAML file.
func WriteSearchFile(path string, sf SearchFile) error {
	if sf.Timestamp.IsZero() {
		sf.Timestamp = time.Now()
	}
	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("marshaling search file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSearchFile loads a previously saved search from disk.
func ReadSearchFile(path string) (*SearchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading search file: %w", err)
	}
	var sf SearchFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing search file: %w", err)
	}
	return &sf, nil
}
