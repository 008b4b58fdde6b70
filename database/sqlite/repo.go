// Package sqlite implements the file metadata repo using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skovric/filedrop"
)

type Repo struct {
	db        *sql.DB
	tableName string
}

func NewRepo(db *sql.DB, tables filedrop.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: tables.Files}, nil
}

func (r *Repo) Create(ctx context.Context, rec filedrop.NewRecord) (filedrop.FileRecord, error) {
	id := uuid.New()
	now := time.Now().UTC()

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, key, original_name, content_type, size, title, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, r.tableName)

	_, err := r.db.ExecContext(ctx, query,
		id.String(), rec.Key, rec.OriginalName, rec.ContentType, rec.Size,
		rec.Title, rec.Description, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return filedrop.FileRecord{}, fmt.Errorf("create: %w", err)
	}

	return filedrop.FileRecord{
		ID:           id,
		Key:          rec.Key,
		OriginalName: rec.OriginalName,
		ContentType:  rec.ContentType,
		Size:         rec.Size,
		Title:        rec.Title,
		Description:  rec.Description,
		CreatedAt:    now,
	}, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (filedrop.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, key, original_name, content_type, size, title, description, created_at
		FROM %s
		WHERE id = ?`, r.tableName)

	f, err := scanRecord(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filedrop.FileRecord{}, filedrop.ErrNotFound
		}
		return filedrop.FileRecord{}, fmt.Errorf("get: %w", err)
	}

	return f, nil
}

func (r *Repo) List(ctx context.Context) ([]filedrop.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, key, original_name, content_type, size, title, description, created_at
		FROM %s
		ORDER BY created_at DESC, id`, r.tableName)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []filedrop.FileRecord{}
	for rows.Next() {
		f, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("list: %w", scanErr)
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
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET title = COALESCE(?, title),
			description = COALESCE(?, description)
		WHERE id = ?`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, patch.Title, patch.Description, id.String())
	if err != nil {
		return filedrop.FileRecord{}, fmt.Errorf("update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return filedrop.FileRecord{}, fmt.Errorf("update: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return filedrop.FileRecord{}, filedrop.ErrNotFound
	}

	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.tableName) //nolint:gosec // table name is validated

	result, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete: %w", filedrop.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (filedrop.FileRecord, error) {
	var f filedrop.FileRecord
	var idStr, createdAt string

	if err := row.Scan(
		&idStr, &f.Key, &f.OriginalName, &f.ContentType, &f.Size, &f.Title, &f.Description, &createdAt,
	); err != nil {
		return filedrop.FileRecord{}, err
	}

	var err error
	f.ID, err = uuid.Parse(idStr)
	if err != nil {
		return filedrop.FileRecord{}, fmt.Errorf("parse uuid: %w", err)
	}

	f.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return filedrop.FileRecord{}, fmt.Errorf("parse created_at: %w", err)
	}

	return f, nil
}
