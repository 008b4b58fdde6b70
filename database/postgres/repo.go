// Package postgres implements the file metadata repo on PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skovric/filedrop"
)

// Tables is an alias for filedrop.Tables for package compatibility.
type Tables = filedrop.Tables

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: tables.Files}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) Create(ctx context.Context, rec filedrop.NewRecord) (filedrop.FileRecord, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, original_name, content_type, size, title, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, key, original_name, content_type, size, title, description, created_at
	`, r.tableName)

	var f filedrop.FileRecord
	err := r.pool.QueryRow(ctx, query,
		rec.Key, rec.OriginalName, rec.ContentType, rec.Size, rec.Title, rec.Description,
	).Scan(
		&f.ID, &f.Key, &f.OriginalName, &f.ContentType, &f.Size, &f.Title, &f.Description, &f.CreatedAt,
	)
	if err != nil {
		return filedrop.FileRecord{}, fmt.Errorf("create: %w", err)
	}

	return f, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (filedrop.FileRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, key, original_name, content_type, size, title, description, created_at
		FROM %s
		WHERE id = $1
	`, r.tableName)

	var f filedrop.FileRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Key, &f.OriginalName, &f.ContentType, &f.Size, &f.Title, &f.Description, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filedrop.FileRecord{}, filedrop.ErrNotFound
		}
		return filedrop.FileRecord{}, fmt.Errorf("get: %w", err)
	}

	return f, nil
}

func (r *Repo) List(ctx context.Context) ([]filedrop.FileRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, key, original_name, content_type, size, title, description, created_at
		FROM %s
		ORDER BY created_at DESC, id
	`, r.tableName)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := []filedrop.FileRecord{}
	for rows.Next() {
		var f filedrop.FileRecord
		if scanErr := rows.Scan(
			&f.ID, &f.Key, &f.OriginalName, &f.ContentType, &f.Size, &f.Title, &f.Description, &f.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("list: scan: %w", scanErr)
		}
		items = append(items, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return items, nil
}

func (r *Repo) Update(ctx context.Context, id uuid.UUID, patch filedrop.RecordPatch) (filedrop.FileRecord, error) {
	// COALESCE keeps stored values where the patch carries nil.
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = COALESCE($2, title),
			description = COALESCE($3, description)
		WHERE id = $1
		RETURNING id, key, original_name, content_type, size, title, description, created_at
	`, r.tableName)

	var f filedrop.FileRecord
	err := r.pool.QueryRow(ctx, query, id, patch.Title, patch.Description).Scan(
		&f.ID, &f.Key, &f.OriginalName, &f.ContentType, &f.Size, &f.Title, &f.Description, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filedrop.FileRecord{}, filedrop.ErrNotFound
		}
		return filedrop.FileRecord{}, fmt.Errorf("update: %w", err)
	}

	return f, nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tableName)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete: %w", filedrop.ErrNotFound)
	}

	return nil
}
