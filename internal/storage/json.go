package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"shcompat/internal/domain"
)

// JSONStorage stores one suite result per JSON document
type JSONStorage struct{}

// NewJSONStorage creates a new JSONStorage
func NewJSONStorage() *JSONStorage {
	return &JSONStorage{}
}

// Save writes suite to path, creating parent directories as needed
func (s *JSONStorage) Save(path string, suite *domain.SuiteResult) error {
	data, err := json.MarshalIndent(suite, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// SaveToDir writes suite to <dir>/<suite name>.json and returns the path
func (s *JSONStorage) SaveToDir(dir string, suite *domain.SuiteResult) (string, error) {
	path := filepath.Join(dir, suite.SuiteName+".json")
	if err := s.Save(path, suite); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a suite result and checks that its counts are consistent
func (s *JSONStorage) Load(path string) (*domain.SuiteResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var suite domain.SuiteResult
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parse results %s: %w", path, err)
	}
	if err := suite.Validate(); err != nil {
		return nil, fmt.Errorf("invalid results %s: %w", path, err)
	}
	return &suite, nil
}
