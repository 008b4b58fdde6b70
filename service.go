package filedrop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FileRepo defines the interface for file metadata persistence.
// Implementations must handle concurrent access safely.
//
// All methods accept a context for cancellation and timeout control.
type FileRepo interface {
	// Create persists a new record and returns it with its assigned ID
	// and creation timestamp.
	Create(ctx context.Context, rec NewRecord) (FileRecord, error)

	// Get retrieves a record by ID.
	//
	// Returns ErrNotFound if no record exists with the given ID.
	Get(ctx context.Context, id uuid.UUID) (FileRecord, error)

	// List returns all records ordered by creation time descending.
	// Returns an empty slice (not nil) when there are no records.
	List(ctx context.Context) ([]FileRecord, error)

	// Update applies a merge patch: only non-nil fields of the patch
	// overwrite stored values. Returns the updated record, or
	// ErrNotFound if the ID does not exist.
	Update(ctx context.Context, id uuid.UUID, patch RecordPatch) (FileRecord, error)

	// Delete removes a record by ID.
	//
	// Returns ErrNotFound if no record exists with the given ID.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ObjectStore defines the interface for the remote object store.
// Implementations issue presigned URLs and delete stored objects;
// file bytes never pass through this process.
type ObjectStore interface {
	// UploadURL returns a presigned URL authorizing one PUT of the
	// given content type to key, valid for expiry.
	UploadURL(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)

	// DownloadURL returns a presigned URL authorizing GETs of the
	// object at key, valid for ttl.
	DownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Delete removes the object at key. Deleting a key that does not
	// exist is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all stored objects under prefix.
	//
	// This walks the remote listing page by page and can be expensive
	// for large buckets; it exists for reconciliation sweeps, not for
	// request handling.
	List(ctx context.Context, prefix string) ([]string, error)
}

type Service struct {
	repo         FileRepo
	store        ObjectStore
	uploadExpiry time.Duration
	downloadTTL  time.Duration
	log          *slog.Logger
	validate     *validator.Validate
}

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	UploadExpiry time.Duration // Validity of upload URLs (default: 5m)
	DownloadTTL  time.Duration // Validity of download URLs (default: 5m)
	Logger       *slog.Logger  // Defaults to slog.Default()
}

func NewService(repo FileRepo, store ObjectStore, cfg ServiceConfig) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("new service: repo cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("new service: object store cannot be nil")
	}

	uploadExpiry := cfg.UploadExpiry
	if uploadExpiry <= 0 {
		uploadExpiry = 5 * time.Minute
	}
	downloadTTL := cfg.DownloadTTL
	if downloadTTL <= 0 {
		downloadTTL = 5 * time.Minute
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		repo:         repo,
		store:        store,
		uploadExpiry: uploadExpiry,
		downloadTTL:  downloadTTL,
		log:          log,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Presign mints a fresh key under the managed namespace and issues an
// upload grant for it. No metadata is written; an abandoned upload
// leaves at most an unreferenced object in the store, never a record.
func (s *Service) Presign(ctx context.Context, req PresignRequest) (PresignResult, error) {
	if err := ctx.Err(); err != nil {
		return PresignResult{}, fmt.Errorf("presign: %w", err)
	}

	if err := s.validate.Struct(req); err != nil {
		return PresignResult{}, fmt.Errorf("presign: %s: %w", err, ErrInvalidInput)
	}

	key, err := MintKey(req.FileName)
	if err != nil {
		return PresignResult{}, fmt.Errorf("presign: %w", err)
	}

	url, err := s.store.UploadURL(ctx, key, req.FileType, s.uploadExpiry)
	if err != nil {
		s.log.Error("issue upload url", "key", key, "error", err)
		return PresignResult{}, fmt.Errorf("presign %s: %s: %w", key, err, ErrCredential)
	}

	s.log.Info("upload grant issued", "key", key, "content_type", req.FileType, "expiry", s.uploadExpiry)

	return PresignResult{URL: url, Key: key}, nil
}

// CreateRecord registers metadata for an upload the client reports as
// complete. The object is not verified to exist at key; the direct
// upload pattern trusts the client to have finished the PUT.
func (s *Service) CreateRecord(ctx context.Context, rec NewRecord) (FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return FileRecord{}, fmt.Errorf("create record: %w", err)
	}

	if err := s.validate.Struct(rec); err != nil {
		return FileRecord{}, fmt.Errorf("create record: %s: %w", err, ErrInvalidInput)
	}

	if !IsManagedKey(rec.Key) {
		return FileRecord{}, fmt.Errorf("create record %s: %w", rec.Key, ErrRejected)
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return FileRecord{}, fmt.Errorf("create record %s: %w", rec.Key, err)
	}

	s.log.Info("record created", "id", created.ID, "key", created.Key, "size", created.Size)

	return created, nil
}

// List returns all records newest first, each annotated with a freshly
// issued download URL. URL issuance is fail-fast: one signing failure
// fails the whole listing rather than returning partial results.
func (s *Service) List(ctx context.Context) ([]FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	for i := range records {
		url, urlErr := s.store.DownloadURL(ctx, records[i].Key, s.downloadTTL)
		if urlErr != nil {
			s.log.Error("issue download url", "key", records[i].Key, "error", urlErr)
			return nil, fmt.Errorf("list records %s: %s: %w", records[i].Key, urlErr, ErrCredential)
		}
		records[i].URL = url
	}

	return records, nil
}

// Get fetches one record by ID and annotates it with a fresh download
// URL.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return FileRecord{}, fmt.Errorf("get record: %w", err)
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return FileRecord{}, fmt.Errorf("get record %s: %w", id, err)
	}

	url, urlErr := s.store.DownloadURL(ctx, rec.Key, s.downloadTTL)
	if urlErr != nil {
		s.log.Error("issue download url", "key", rec.Key, "error", urlErr)
		return FileRecord{}, fmt.Errorf("get record %s: %s: %w", id, urlErr, ErrCredential)
	}
	rec.URL = url

	return rec, nil
}

// Update applies a merge patch to the editable fields. Fields absent
// from the patch keep their stored values.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch RecordPatch) (FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return FileRecord{}, fmt.Errorf("update record: %w", err)
	}

	var updated FileRecord
	var err error
	if patch.IsEmpty() {
		// Nothing to write; answer with the stored record.
		updated, err = s.repo.Get(ctx, id)
	} else {
		updated, err = s.repo.Update(ctx, id, patch)
	}
	if err != nil {
		return FileRecord{}, fmt.Errorf("update record %s: %w", id, err)
	}

	url, urlErr := s.store.DownloadURL(ctx, updated.Key, s.downloadTTL)
	if urlErr != nil {
		s.log.Error("issue download url", "key", updated.Key, "error", urlErr)
		return FileRecord{}, fmt.Errorf("update record %s: %s: %w", id, urlErr, ErrCredential)
	}
	updated.URL = url

	if !patch.IsEmpty() {
		s.log.Info("record updated", "id", id)
	}

	return updated, nil
}

// Delete removes a stored object and its record, in that order.
//
// The key is validated against the managed namespace first; a record
// whose key falls outside it is refused with ErrRejected and neither
// store is touched. Object deletion precedes metadata deletion so a
// crash between the two leaves a dangling record (detectable by
// Reconcile) rather than an untracked object.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}

	// The guard inspects the decoded form, but the object lives under
	// the key exactly as stored, so that is what gets deleted.
	normalized, err := NormalizeKey(rec.Key)
	if err != nil {
		s.log.Warn("delete refused", "id", id, "key", rec.Key)
		return fmt.Errorf("delete record %s: %w", id, err)
	}

	if !isManagedNormalized(normalized) {
		s.log.Warn("delete refused", "id", id, "key", rec.Key)
		return fmt.Errorf("delete record %s: key %s: %w", id, rec.Key, ErrRejected)
	}

	if err := s.store.Delete(ctx, rec.Key); err != nil {
		s.log.Error("delete object", "id", id, "key", rec.Key, "error", err)
		return fmt.Errorf("delete record %s: delete object %s: %w", id, rec.Key, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		// The object is already gone; the remaining record is picked
		// up by the next reconciliation sweep.
		s.log.Error("delete metadata after object removal", "id", id, "key", rec.Key, "error", err)
		return fmt.Errorf("delete record %s: %w", id, err)
	}

	s.log.Info("record deleted", "id", id, "key", rec.Key)

	return nil
}

// Reconcile compares the object store listing under the managed prefix
// against the metadata records and reports the differences. Orphan
// objects (stored but unrecorded, typically abandoned uploads) are
// deleted when prune is set; dangling records (recorded but missing
// from the store) are only reported.
func (s *Service) Reconcile(ctx context.Context, prune bool) (ReconcileReport, error) {
	if err := ctx.Err(); err != nil {
		return ReconcileReport{}, fmt.Errorf("reconcile: %w", err)
	}

	keys, err := s.store.List(ctx, ManagedPrefix)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("reconcile: list objects: %w", err)
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("reconcile: list records: %w", err)
	}

	recorded := make(map[string]struct{}, len(records))
	for _, rec := range records {
		recorded[rec.Key] = struct{}{}
	}

	stored := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		stored[key] = struct{}{}
	}

	report := ReconcileReport{
		OrphanObjects:   []string{},
		DanglingRecords: []string{},
	}

	for _, key := range keys {
		if _, ok := recorded[key]; ok {
			continue
		}
		report.OrphanObjects = append(report.OrphanObjects, key)
		if !prune {
			continue
		}
		if !IsManagedKey(key) {
			s.log.Warn("prune refused", "key", key)
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return report, fmt.Errorf("reconcile: prune %s: %w", key, err)
		}
		report.Pruned++
		s.log.Info("orphan object pruned", "key", key)
	}

	for _, rec := range records {
		if _, ok := stored[rec.Key]; !ok {
			report.DanglingRecords = append(report.DanglingRecords, rec.Key)
		}
	}

	return report, nil
}
