package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// schemaStep is one embedded migration file, "NNN_name.sql".
type schemaStep struct {
	version int
	file    string
	sql     string
}

// RunMigrations brings the schema to the newest embedded version. Each step
// runs in its own transaction together with its schema_version row.
func RunMigrations(db *DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			file TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	current, err := schemaVersion(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	steps, err := loadSchemaSteps()
	if err != nil {
		return err
	}

	for _, step := range steps {
		if step.version <= current {
			continue
		}
		err := db.Transaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, step.sql); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version, file) VALUES (?, ?)`, step.version, step.file)
			return err
		})
		if err != nil {
			return fmt.Errorf("applying migration %s: %w", step.file, err)
		}
		current = step.version
		logger.Info("Migration applied", zap.String("file", step.file), zap.Int("version", step.version))
	}

	logger.Debug("Schema up to date", zap.Int("version", current))
	return nil
}

func schemaVersion(ctx context.Context, q Queryable) (int, error) {
	var v int
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v)
	return v, err
}

func loadSchemaSteps() ([]schemaStep, error) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}

	steps := make([]schemaStep, 0, len(files))
	seen := make(map[int]string, len(files))
	for _, f := range files {
		name := path.Base(f)
		prefix, _, ok := strings.Cut(name, "_")
		version, err := strconv.Atoi(prefix)
		if !ok || err != nil || version < 1 {
			return nil, fmt.Errorf("migration %s: name must start with a positive version", name)
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", other, name, version)
		}
		seen[version] = name

		content, err := migrationsFS.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		steps = append(steps, schemaStep{version: version, file: name, sql: string(content)})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}
