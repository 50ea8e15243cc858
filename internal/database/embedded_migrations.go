package database

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

//go:embed migrations/*.sql
var embeddedMigrationsFS embed.FS

// parsed once per process, the embedded set never changes
var (
	migrationCache     []*MigrationFile
	migrationCacheErr  error
	migrationCacheOnce sync.Once
)

// getMigrationFiles returns the embedded migrations sorted by version
func getMigrationFiles() ([]*MigrationFile, error) {
	migrationCacheOnce.Do(func() {
		migrationCache, migrationCacheErr = loadMigrationFiles(embeddedMigrationsFS)
	})
	if migrationCacheErr != nil {
		return nil, migrationCacheErr
	}
	out := make([]*MigrationFile, len(migrationCache))
	copy(out, migrationCache)
	return out, nil
}

func loadMigrationFiles(fsys fs.FS) ([]*MigrationFile, error) {
	files, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations directory: %w", err)
	}

	var migrations []*MigrationFile
	seen := make(map[int]string)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".sql") {
			continue
		}
		migration, err := parseMigrationFileName(f.Name())
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[migration.Version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s", migration.Version, prev, f.Name())
		}
		seen[migration.Version] = f.Name()

		content, err := fs.ReadFile(fsys, "migrations/"+f.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded migration file %s: %w", f.Name(), err)
		}
		migration.SQL = string(content)
		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}
