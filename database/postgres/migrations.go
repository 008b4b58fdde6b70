package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skovric/filedrop"
)

func createFilesTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexCreatedAt := pgx.Identifier{fmt.Sprintf("idx_%s_created_at", tableName)}.Sanitize()
	indexKey := pgx.Identifier{fmt.Sprintf("idx_%s_key", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			key TEXT NOT NULL UNIQUE,
			original_name TEXT NOT NULL,
			content_type TEXT NOT NULL,
			size BIGINT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (created_at DESC, id);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (key);
	`,
		quotedTable,
		indexCreatedAt, quotedTable,
		indexKey, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create files table: %w", err)
	}
	return nil
}

func dropFilesTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()

	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable))
	if err != nil {
		return fmt.Errorf("drop files table: %w", err)
	}
	return nil
}

func Migrate(ctx context.Context, pool *pgxpool.Pool, tables filedrop.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := createFilesTable(ctx, pool, tables.Files); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Files, err)
	}

	return nil
}

func DropTables(ctx context.Context, pool *pgxpool.Pool, tables filedrop.Tables) error {
	if err := dropFilesTable(ctx, pool, tables.Files); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Files, err)
	}

	return nil
}
