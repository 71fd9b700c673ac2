// Package pathutil provides centralized path management for the data directory.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PathResolver manages paths for local databases and exports.
type PathResolver struct {
	dataRoot     string
	databasePath string
	boltPath     string
	exportDir    string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataRoot is the directory holding all local state (e.g., ./data)
	DataRoot string
	// DatabasePath is the SQLite file for sync history and the sqlite backend
	DatabasePath string
	// BoltPath is the bbolt file of the default snapshot backend
	BoltPath string
	// ExportDir is where export files are written
	ExportDir string
}

// New creates a new PathResolver with the given configuration.
// Empty paths default to {DataRoot}/budget.db, {DataRoot}/budget.bolt and
// {DataRoot}/exports.
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.DataRoot, "budget.db")
	}

	boltPath := config.BoltPath
	if boltPath == "" {
		boltPath = filepath.Join(config.DataRoot, "budget.bolt")
	}

	exportDir := config.ExportDir
	if exportDir == "" {
		exportDir = filepath.Join(config.DataRoot, "exports")
	}

	return &PathResolver{
		dataRoot:     config.DataRoot,
		databasePath: dbPath,
		boltPath:     boltPath,
		exportDir:    exportDir,
	}
}

// GetDataRoot returns the data directory.
func (p *PathResolver) GetDataRoot() string {
	return p.dataRoot
}

// GetDatabasePath returns the SQLite database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetBoltPath returns the bbolt database file path.
func (p *PathResolver) GetBoltPath() string {
	return p.boltPath
}

// GetExportDir returns the export directory.
func (p *PathResolver) GetExportDir() string {
	return p.exportDir
}

// GetExportPath returns the export file path for identity on the given day.
// Example: data/exports/budget-planner-alice-2026-10-19.json
func (p *PathResolver) GetExportPath(identity string, at time.Time) string {
	name := sanitize(identity)
	if name == "" {
		name = "local"
	}
	filename := fmt.Sprintf("budget-planner-%s-%s.json", name, at.Format("2006-01-02"))
	return filepath.Join(p.exportDir, filename)
}

// sanitize keeps identity usable as a file name component.
func sanitize(identity string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.', r == '@':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, strings.TrimSpace(identity))
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return p.EnsureDir(dir)
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
