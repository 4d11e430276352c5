package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	migrationTable  = "schema_migrations"
	migrateUpMarker = "-- +migrate Up"
	migrateDnMarker = "-- +migrate Down"
)

// applyMigrations runs every .sql file in migrationFS that hasn't been recorded in the migration table yet
func applyMigrations(ctx context.Context, db *sql.DB, migrationFS fs.FS) error {

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	files := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %v (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)`, migrationTable))
	if err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var found int
		err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT 1 FROM %v WHERE name = ?`, migrationTable), file).Scan(&found)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration %v: %w", file, err)
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %v: %w", file, err)
		}

		upSQL := upMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %v: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, upSQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %v: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`INSERT OR IGNORE INTO %v (name, applied_at) VALUES (?, ?)`, migrationTable), file, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %v: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %v: %w", file, err)
		}

		log.Debug().Msgf("Applied migration %v", file)
	}

	return nil
}

// upMigration returns the statements between the up and down markers
func upMigration(content string) string {
	upIdx := strings.Index(content, migrateUpMarker)
	if upIdx == -1 {
		return content
	}
	content = content[upIdx+len(migrateUpMarker):]

	if downIdx := strings.Index(content, migrateDnMarker); downIdx != -1 {
		return content[:downIdx]
	}
	return content
}
