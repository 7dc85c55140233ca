package reporting

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// GetDefaultOutputDir returns the default output directory for a portfolio
func (p *DefaultPathManager) GetDefaultOutputDir(symbols []string) string {
	parts := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			parts = append(parts, s)
		}
	}
	name := strings.Join(parts, "_")
	if name == "" {
		name = "UNKNOWN"
	}

	return filepath.Join("results", name)
}

// EnsureDirectoryExists creates directory if it doesn't exist
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// Package-level convenience function
func DefaultOutputDir(symbols []string) string {
	manager := NewDefaultPathManager()
	return manager.GetDefaultOutputDir(symbols)
}
