package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skovric/filedrop"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

func createFilesTable(ctx context.Context, db *sql.DB, tableName string) error {
	quotedTable := quoteIdentifier(tableName)
	indexCreatedAt := quoteIdentifier(fmt.Sprintf("idx_%s_created_at", tableName))
	indexKey := quoteIdentifier(fmt.Sprintf("idx_%s_key", tableName))

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT NOT NULL PRIMARY KEY,
			key TEXT NOT NULL UNIQUE,
			original_name TEXT NOT NULL,
			content_type TEXT NOT NULL,
			size INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)
	`, quotedTable)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	indexSQL := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s ON %s (created_at DESC, id)
	`, indexCreatedAt, quotedTable)

	if _, err := db.ExecContext(ctx, indexSQL); err != nil {
		return fmt.Errorf("create index created_at: %w", err)
	}

	indexSQL = fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s ON %s (key)
	`, indexKey, quotedTable)

	if _, err := db.ExecContext(ctx, indexSQL); err != nil {
		return fmt.Errorf("create index key: %w", err)
	}

	return nil
}

func dropFilesTable(ctx context.Context, db *sql.DB, tableName string) error {
	quotedTable := quoteIdentifier(tableName)

	_, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable))
	return err
}

func Migrate(ctx context.Context, db *sql.DB, tables filedrop.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := createFilesTable(ctx, db, tables.Files); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Files, err)
	}

	return nil
}

func DropTables(ctx context.Context, db *sql.DB, tables filedrop.Tables) error {
	if err := dropFilesTable(ctx, db, tables.Files); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Files, err)
	}

	return nil
}
