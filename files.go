package auth

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// RunMigrations applies the embedded schema files in lexical order. Each
// file runs in its own statement; files are idempotent so repeated startup
// runs are safe.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	root := "data/sql/migrations"

	entries, err := fs.ReadDir(migrationsFS, root)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read migrations directory")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := fs.ReadFile(migrationsFS, fmt.Sprintf("%s/%s", root, name))
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to read migration file").
				WithMetadata(map[string]any{"file": name})
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to apply migration").
				WithMetadata(map[string]any{"file": name})
		}
	}

	return nil
}
