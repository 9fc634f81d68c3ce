package migrations

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Migration is one ordered schema change.
type Migration struct {
	Version    int
	Name       string
	Statements []string
}

// timestampToken is replaced with the driver's timestamp column type.
const timestampToken = "{{TIMESTAMP}}"

// Run applies every migration not yet recorded in schema_migrations.
func Run(ctx context.Context, db *sqlx.DB, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialect := db.DriverName()

	if _, err := db.ExecContext(ctx, render(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at {{TIMESTAMP}} NOT NULL
	)`, dialect)); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var versions []int
	if err := db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("load applied migrations: %w", err)
	}
	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}

	pending := All()
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	count := 0
	for _, m := range pending {
		if applied[m.Version] {
			continue
		}
		logger.Info("applying migration", zap.Int("version", m.Version), zap.String("name", m.Name))
		if err := apply(ctx, db, m, dialect); err != nil {
			return count, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		count++
	}
	return count, nil
}

func apply(ctx context.Context, db *sqlx.DB, m Migration, dialect string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, render(stmt, dialect)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, CURRENT_TIMESTAMP)`, m.Version, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}

func render(stmt, dialect string) string {
	ts := "TIMESTAMPTZ"
	if dialect != "postgres" {
		ts = "TIMESTAMP"
	}
	return strings.ReplaceAll(stmt, timestampToken, ts)
}
