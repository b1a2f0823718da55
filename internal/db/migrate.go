package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/unclebandit/campaign-mailer/internal/logger"
)

// Migrate applies every *.sql file in fsys not yet recorded in
// schema_migrations, in lexical order, each in its own transaction.
// It returns the names of the files it applied.
func Migrate(ctx context.Context, conn *sql.DB, fsys fs.FS) ([]string, error) {
	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	applied := map[string]bool{}
	rows, err := conn.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		applied[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var done []string
	for _, name := range names {
		if applied[name] {
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return done, fmt.Errorf("read %s: %w", name, err)
		}
		err = WithTx(ctx, conn, func(tx *sql.Tx) error {
			if strings.TrimSpace(string(body)) != "" {
				if _, err := tx.ExecContext(ctx, string(body)); err != nil {
					return err
				}
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name)
			return err
		})
		if err != nil {
			return done, fmt.Errorf("apply %s: %w", name, err)
		}
		logger.From(ctx).Info("migration applied", logger.String("migration", name))
		done = append(done, name)
	}
	return done, nil
}
