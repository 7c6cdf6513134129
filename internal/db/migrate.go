package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// RunMigrations applies the embedded .sql files that are not yet listed in
// schema_migrations, in name order, each inside its own transaction.
func RunMigrations(conn *sql.DB) error {
	if _, err := conn.Exec(createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := appliedMigrations(conn)
	if err != nil {
		return err
	}
	names, err := fs.Glob(embeddedMigrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list embedded migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		base := strings.TrimPrefix(name, "migrations/")
		if applied[base] {
			continue
		}
		body, err := embeddedMigrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read embedded migration %s: %w", base, err)
		}
		if err := applyMigration(conn, base, string(body)); err != nil {
			return err
		}
	}
	return nil
}

func appliedMigrations(conn *sql.DB) (map[string]bool, error) {
	rows, err := conn.Query(`SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

func applyMigration(conn *sql.DB, name, body string) error {
	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	if strings.TrimSpace(body) != "" {
		if _, err := tx.Exec(body); err != nil {
			tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (name) VALUES (?)`, name); err != nil {
		tx.Rollback()
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	return tx.Commit()
}
