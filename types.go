package filedrop

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// FileRecord is the metadata entry for one uploaded object. URL is
// populated on reads with a fresh short-lived download link and is
// never persisted.
type FileRecord struct {
	ID           uuid.UUID `json:"id"`
	Key          string    `json:"key"`
	OriginalName string    `json:"originalName"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	URL          string    `json:"url,omitempty"`
}

// NewRecord is the input for registering an uploaded object.
type NewRecord struct {
	Key          string `json:"key" validate:"required"`
	OriginalName string `json:"originalName" validate:"required"`
	ContentType  string `json:"contentType" validate:"required"`
	Size         int64  `json:"size" validate:"gte=0"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

// RecordPatch carries a partial update. Nil fields are left untouched.
type RecordPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// IsEmpty reports whether the patch would change nothing.
func (p RecordPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil
}

// PresignRequest is the input for minting an upload grant.
type PresignRequest struct {
	FileName string `json:"fileName" validate:"required"`
	FileType string `json:"fileType" validate:"required"`
}

// PresignResult is an upload grant: a one-shot PUT URL and the object
// key the client must echo back when registering the upload.
type PresignResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// ReconcileReport summarizes one reconciliation sweep: objects in the
// store with no record, records with no object, and how many orphans
// were pruned.
type ReconcileReport struct {
	OrphanObjects   []string `json:"orphanObjects"`
	DanglingRecords []string `json:"danglingRecords"`
	Pruned          int      `json:"pruned"`
}

// Tables holds configurable table names for metadata storage.
// This allows multi-tenant deployments to use different table names.
type Tables struct {
	Files string `mapstructure:"files"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Files == "" {
		return errors.New("validate tables: files table name cannot be empty")
	}

	if !IsValidTableName(t.Files) {
		return fmt.Errorf("validate tables: invalid files table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Files)
	}

	return nil
}
