package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/config"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/db"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// handlerRepo stubs only the Repository methods the handlers touch; the
// embedded interface panics on anything else, which is what we want in a
// handler test.
type handlerRepo struct {
	db.Repository

	syncLogs  map[string]model.SyncLog
	uploads   map[int64]model.UploadFile
	createErr error
}

func newHandlerRepo() *handlerRepo {
	return &handlerRepo{
		syncLogs: make(map[string]model.SyncLog),
		uploads:  make(map[int64]model.UploadFile),
	}
}

func (r *handlerRepo) CreateSyncLog(_ context.Context, l *model.SyncLog) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.syncLogs[l.SyncID] = *l
	return nil
}

func (r *handlerRepo) GetSyncLog(_ context.Context, syncID string) (*model.SyncLog, error) {
	l, ok := r.syncLogs[syncID]
	if !ok {
		return nil, errors.ErrSyncLogNotFound
	}
	return &l, nil
}

func (r *handlerRepo) ListSyncLogs(_ context.Context, limit int) ([]model.SyncLog, error) {
	var logs []model.SyncLog
	for _, l := range r.syncLogs {
		logs = append(logs, l)
		if len(logs) == limit {
			break
		}
	}
	return logs, nil
}

func (r *handlerRepo) CreateUploadFile(_ context.Context, file *model.UploadFile) (int64, error) {
	id := int64(len(r.uploads) + 1)
	file.ID = id
	r.uploads[id] = *file
	return id, nil
}

func (r *handlerRepo) GetUploadFile(_ context.Context, fileID int64) (*model.UploadFile, error) {
	file, ok := r.uploads[fileID]
	if !ok {
		return nil, errors.ErrFileNotFound
	}
	return &file, nil
}

type fakeQueue struct {
	syncJobs      []model.SyncJob
	ingestionJobs []model.IngestionJob
	enqueueErr    error
}

func (q *fakeQueue) EnqueueSyncJob(_ context.Context, job model.SyncJob) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.syncJobs = append(q.syncJobs, job)
	return nil
}

func (q *fakeQueue) EnqueueIngestionJob(_ context.Context, job model.IngestionJob) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.ingestionJobs = append(q.ingestionJobs, job)
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
}

func (s *fakeStorage) Upload(_ context.Context, key string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = b
	return nil
}

func (s *fakeStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := s.objects[key]
	if !ok {
		return nil, errors.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

func setupTest() (*handlerRepo, *fakeQueue, *fakeStorage, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	repo := newHandlerRepo()
	queue := &fakeQueue{}
	store := &fakeStorage{}

	cfg := &config.Config{}
	cfg.App.Name = "classroom-sync"
	cfg.App.Version = "test"

	router := gin.New()
	SetupRoutes(router, NewHandler(repo, queue, store, cfg))
	return repo, queue, store, router
}

func TestTriggerSync(t *testing.T) {
	t.Run("valid scope is accepted", func(t *testing.T) {
		repo, queue, _, router := setupTest()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/trigger",
			strings.NewReader(`{"scope":"courses"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-Email", "admin@x.com")
		req.Header.Set("X-User-Role", "admin")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)

		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		syncID, _ := body["sync_id"].(string)
		assert.NotEmpty(t, syncID)

		// Job and audit row carry the same pre-allocated id.
		assert.Len(t, queue.syncJobs, 1)
		assert.Equal(t, syncID, queue.syncJobs[0].SyncID)
		assert.Equal(t, model.CredentialServiceAccount, queue.syncJobs[0].Credential)
		assert.Equal(t, "admin@x.com", queue.syncJobs[0].InitiatorEmail)

		logRow, ok := repo.syncLogs[syncID]
		assert.True(t, ok, "sync log row not created before enqueue")
		assert.Equal(t, model.SyncStatusStarted, logRow.Status)
	})

	t.Run("oauth tokens select admin credential", func(t *testing.T) {
		_, queue, _, router := setupTest()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/trigger",
			strings.NewReader(`{"scope":"full","access_token":"at","refresh_token":"rt"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Len(t, queue.syncJobs, 1)
		assert.Equal(t, model.CredentialAdminOAuth, queue.syncJobs[0].Credential)
		assert.Equal(t, "at", queue.syncJobs[0].AccessToken)
	})

	t.Run("invalid scope is rejected", func(t *testing.T) {
		_, queue, _, router := setupTest()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/trigger",
			strings.NewReader(`{"scope":"everything"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, queue.syncJobs)
	})

	t.Run("missing scope is rejected", func(t *testing.T) {
		_, _, _, router := setupTest()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/trigger", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("enqueue failure returns 500", func(t *testing.T) {
		_, queue, _, router := setupTest()
		queue.enqueueErr = errors.NewRetryableError(assert.AnError, "redis down")

		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/trigger",
			strings.NewReader(`{"scope":"courses"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetSyncStatus(t *testing.T) {
	repo, _, _, router := setupTest()
	repo.syncLogs["abc"] = model.SyncLog{SyncID: "abc", Status: model.SyncStatusCompleted, Scope: model.ScopeFull}

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/status/abc", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var logRow model.SyncLog
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &logRow))
		assert.Equal(t, model.SyncStatusCompleted, logRow.Status)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/status/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetSyncHistory(t *testing.T) {
	repo, _, _, router := setupTest()
	repo.syncLogs["a"] = model.SyncLog{SyncID: "a"}
	repo.syncLogs["b"] = model.SyncLog{SyncID: "b"}

	t.Run("default limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/history", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Count int `json:"count"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
	})

	t.Run("limit bounds", func(t *testing.T) {
		for _, q := range []string{"0", "201", "-1", "abc"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/history?limit="+q, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", q)
		}
	})
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = part.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAccounts(t *testing.T) {
	t.Run("stores file and queues ingestion", func(t *testing.T) {
		repo, queue, store, router := setupTest()

		body, contentType := multipartBody(t, "accounts.xlsx", []byte("spreadsheet-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-User-Email", "admin@x.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Len(t, queue.ingestionJobs, 1)
		assert.Len(t, store.objects, 1)

		job := queue.ingestionJobs[0]
		file := repo.uploads[job.FileID]
		assert.Equal(t, job.S3Path, file.S3Path)
		assert.Equal(t, model.FileStatusUploaded, file.Status)
		assert.Equal(t, "admin@x.com", file.UploadedBy)
	})

	t.Run("missing file part", func(t *testing.T) {
		_, _, _, router := setupTest()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", strings.NewReader(""))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetUploadStatus(t *testing.T) {
	repo, _, _, router := setupTest()
	repo.uploads[7] = model.UploadFile{ID: 7, Status: model.FileStatusParsedOK}

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/7", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/99", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/uploads/xyz", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	_, _, _, router := setupTest()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "classroom-sync")
}
