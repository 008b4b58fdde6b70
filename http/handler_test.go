package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/skovric/filedrop"
	filedrophttp "github.com/skovric/filedrop/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type SpyService struct {
	mock.Mock
}

func (s *SpyService) Presign(ctx context.Context, req filedrop.PresignRequest) (filedrop.PresignResult, error) {
	args := s.Called(ctx, req)
	return args.Get(0).(filedrop.PresignResult), args.Error(1)
}

func (s *SpyService) CreateRecord(ctx context.Context, rec filedrop.NewRecord) (filedrop.FileRecord, error) {
	args := s.Called(ctx, rec)
	return args.Get(0).(filedrop.FileRecord), args.Error(1)
}

func (s *SpyService) List(ctx context.Context) ([]filedrop.FileRecord, error) {
	args := s.Called(ctx)
	return args.Get(0).([]filedrop.FileRecord), args.Error(1)
}

func (s *SpyService) Get(ctx context.Context, id uuid.UUID) (filedrop.FileRecord, error) {
	args := s.Called(ctx, id)
	return args.Get(0).(filedrop.FileRecord), args.Error(1)
}

func (s *SpyService) Update(ctx context.Context, id uuid.UUID, patch filedrop.RecordPatch) (filedrop.FileRecord, error) {
	args := s.Called(ctx, id, patch)
	return args.Get(0).(filedrop.FileRecord), args.Error(1)
}

func (s *SpyService) Delete(ctx context.Context, id uuid.UUID) error {
	args := s.Called(ctx, id)
	return args.Error(0)
}

func newTestHandler(t *testing.T) (http.Handler, *SpyService) {
	t.Helper()
	service := new(SpyService)
	handler := filedrophttp.NewHandler(&filedrophttp.HandlerConfig{}, service)
	return handler.Router(), service
}

func doRequest(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Presign(t *testing.T) {
	t.Run("returns url and key", func(t *testing.T) {
		router, service := newTestHandler(t)

		service.On("Presign", mock.Anything, filedrop.PresignRequest{
			FileName: "report.pdf",
			FileType: "application/pdf",
		}).Return(filedrop.PresignResult{
			URL: "https://bucket.example/put",
			Key: "uploads/1-abcdef-report.pdf",
		}, nil)

		rec := doRequest(t, router, http.MethodPost, "/presign", map[string]string{
			"filename":    "report.pdf",
			"contentType": "application/pdf",
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var got filedrop.PresignResult
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "https://bucket.example/put", got.URL)
		assert.Equal(t, "uploads/1-abcdef-report.pdf", got.Key)

		service.AssertExpectations(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		router, service := newTestHandler(t)

		service.On("Presign", mock.Anything, filedrop.PresignRequest{FileName: "report.pdf"}).
			Return(filedrop.PresignResult{}, fmt.Errorf("presign: %w", filedrop.ErrInvalidInput))

		rec := doRequest(t, router, http.MethodPost, "/presign", map[string]string{
			"filename": "report.pdf",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/presign", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("signing failure", func(t *testing.T) {
		router, service := newTestHandler(t)

		service.On("Presign", mock.Anything, mock.Anything).
			Return(filedrop.PresignResult{}, fmt.Errorf("presign: %w", filedrop.ErrCredential))

		rec := doRequest(t, router, http.MethodPost, "/presign", map[string]string{
			"filename":    "report.pdf",
			"contentType": "application/pdf",
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var resp filedrophttp.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "internal_error", resp.Error)
	})
}

func TestHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		router, service := newTestHandler(t)

		input := filedrop.NewRecord{
			Key:          "uploads/1-abcdef-report.pdf",
			OriginalName: "report.pdf",
			ContentType:  "application/pdf",
			Size:         1024,
		}
		stored := filedrop.FileRecord{
			ID:           uuid.New(),
			Key:          input.Key,
			OriginalName: input.OriginalName,
			ContentType:  input.ContentType,
			Size:         input.Size,
			CreatedAt:    time.Now().UTC(),
		}
		service.On("CreateRecord", mock.Anything, input).Return(stored, nil)

		rec := doRequest(t, router, http.MethodPost, "/", map[string]any{
			"key":          input.Key,
			"originalName": input.OriginalName,
			"contentType":  input.ContentType,
			"size":         input.Size,
		})

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Message string              `json:"message"`
			Doc     filedrop.FileRecord `json:"doc"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Message)
		assert.Equal(t, stored.ID, resp.Doc.ID)
		assert.Equal(t, int64(1024), resp.Doc.Size)

		service.AssertExpectations(t)
	})

	t.Run("persistence failure", func(t *testing.T) {
		router, service := newTestHandler(t)

		service.On("CreateRecord", mock.Anything, mock.Anything).
			Return(filedrop.FileRecord{}, io.ErrClosedPipe)

		rec := doRequest(t, router, http.MethodPost, "/", map[string]any{
			"key": "uploads/1-abcdef-report.pdf",
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandler_List(t *testing.T) {
	t.Run("returns records with urls", func(t *testing.T) {
		router, service := newTestHandler(t)

		records := []filedrop.FileRecord{
			{ID: uuid.New(), Key: "uploads/2-bbbbbb-b.txt", URL: "https://get/b"},
			{ID: uuid.New(), Key: "uploads/1-aaaaaa-a.txt", URL: "https://get/a"},
		}
		service.On("List", mock.Anything).Return(records, nil)

		rec := doRequest(t, router, http.MethodGet, "/", nil)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Message string                `json:"message"`
			Out     []filedrop.FileRecord `json:"out"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Out, 2)
		assert.Equal(t, "https://get/b", resp.Out[0].URL)
	})

	t.Run("store failure", func(t *testing.T) {
		router, service := newTestHandler(t)

		service.On("List", mock.Anything).Return([]filedrop.FileRecord{}, io.ErrClosedPipe)

		rec := doRequest(t, router, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		router, service := newTestHandler(t)
		id := uuid.New()

		service.On("Get", mock.Anything, id).Return(filedrop.FileRecord{
			ID:  id,
			Key: "uploads/1-aaaaaa-a.txt",
			URL: "https://get/a",
		}, nil)

		rec := doRequest(t, router, http.MethodGet, "/"+id.String(), nil)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			It filedrop.FileRecord `json:"it"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, id, resp.It.ID)
		assert.Equal(t, "https://get/a", resp.It.URL)
	})

	t.Run("not found", func(t *testing.T) {
		router, service := newTestHandler(t)
		id := uuid.New()

		service.On("Get", mock.Anything, id).
			Return(filedrop.FileRecord{}, fmt.Errorf("get record: %w", filedrop.ErrNotFound))

		rec := doRequest(t, router, http.MethodGet, "/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		router, service := newTestHandler(t)

		rec := doRequest(t, router, http.MethodGet, "/not-a-uuid", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		service.AssertNotCalled(t, "Get")
	})
}

func TestHandler_Update(t *testing.T) {
	t.Run("patches provided fields only", func(t *testing.T) {
		router, service := newTestHandler(t)
		id := uuid.New()

		title := "new title"
		service.On("Update", mock.Anything, id, filedrop.RecordPatch{Title: &title}).
			Return(filedrop.FileRecord{ID: id, Title: title, Description: "kept"}, nil)

		rec := doRequest(t, router, http.MethodPatch, "/"+id.String(), map[string]string{
			"title": "new title",
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			It filedrop.FileRecord `json:"it"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "new title", resp.It.Title)
		assert.Equal(t, "kept", resp.It.Description)

		service.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		router, service := newTestHandler(t)
		id := uuid.New()

		service.On("Update", mock.Anything, id, filedrop.RecordPatch{}).
			Return(filedrop.FileRecord{}, fmt.Errorf("update record: %w", filedrop.ErrNotFound))

		rec := doRequest(t, router, http.MethodPatch, "/"+id.String(), map[string]string{})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_Delete(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		router, service := newTestHandler(t)
		id := uuid.New()

		service.On("Delete", mock.Anything, id).Return(nil)

		rec := doRequest(t, router, http.MethodDelete, "/"+id.String(), nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.Bytes())
	})

	t.Run("not found", func(t *testing.T) {
		router, service := newTestHandler(t)
		id := uuid.New()

		service.On("Delete", mock.Anything, id).
			Return(fmt.Errorf("delete record: %w", filedrop.ErrNotFound))

		rec := doRequest(t, router, http.MethodDelete, "/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejected key is a client error", func(t *testing.T) {
		router, service := newTestHandler(t)
		id := uuid.New()

		service.On("Delete", mock.Anything, id).
			Return(fmt.Errorf("delete record: %w", filedrop.ErrRejected))

		rec := doRequest(t, router, http.MethodDelete, "/"+id.String(), nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp filedrophttp.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "key_outside_namespace", resp.Error)
	})

	t.Run("store failure", func(t *testing.T) {
		router, service := newTestHandler(t)
		id := uuid.New()

		service.On("Delete", mock.Anything, id).Return(io.ErrClosedPipe)

		rec := doRequest(t, router, http.MethodDelete, "/"+id.String(), nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
