package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/skovric/filedrop"
)

type Service interface {
	Presign(ctx context.Context, req filedrop.PresignRequest) (filedrop.PresignResult, error)
	CreateRecord(ctx context.Context, rec filedrop.NewRecord) (filedrop.FileRecord, error)
	List(ctx context.Context) ([]filedrop.FileRecord, error)
	Get(ctx context.Context, id uuid.UUID) (filedrop.FileRecord, error)
	Update(ctx context.Context, id uuid.UUID, patch filedrop.RecordPatch) (filedrop.FileRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type HandlerConfig struct {
	CORS   CORSConfig
	Logger *slog.Logger
}

// Handler provides the HTTP surface for the file service.
type Handler struct {
	service Service
	config  HandlerConfig
	log     *slog.Logger
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	log := config.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		service: service,
		config:  *config,
		log:     log,
	}
}

// Router returns the files resource router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Post("/presign", h.handlePresign)
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)

	return r
}

func (h *Handler) handlePresign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	result, err := h.service.Presign(r.Context(), filedrop.PresignRequest{
		FileName: req.FileName,
		FileType: req.FileType,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	created, err := h.service.CreateRecord(r.Context(), filedrop.NewRecord{
		Key:          req.Key,
		OriginalName: req.OriginalName,
		ContentType:  req.ContentType,
		Size:         req.Size,
		Title:        req.Title,
		Description:  req.Description,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, createResponse{
		Message: "File registered",
		Doc:     created,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, listResponse{
		Message: "Files fetched",
		Out:     records,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, recordResponse{It: rec})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	var patch filedrop.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.handleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, recordResponse{It: updated})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// recordID parses the id path parameter. A malformed id cannot match
// any record, so it is reported as not found rather than a bad request.
func (h *Handler) recordID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusNotFound, "not_found", "File not found")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	h.log.Error("request error", "error", err)

	switch {
	case errors.Is(err, filedrop.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "File not found")
	case errors.Is(err, filedrop.ErrRejected):
		WriteError(w, http.StatusBadRequest, "key_outside_namespace", "Key is outside the managed namespace")
	case errors.Is(err, filedrop.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid input")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

type presignRequest struct {
	FileName string `json:"filename"`
	FileType string `json:"contentType"`
}

type createRequest struct {
	Key          string `json:"key"`
	OriginalName string `json:"originalName"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

type createResponse struct {
	Message string              `json:"message"`
	Doc     filedrop.FileRecord `json:"doc"`
}

type listResponse struct {
	Message string                `json:"message"`
	Out     []filedrop.FileRecord `json:"out"`
}

type recordResponse struct {
	It filedrop.FileRecord `json:"it"`
}
