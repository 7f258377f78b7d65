package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/config"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/db"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/logger"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/storage"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JobQueue is the queue surface the handlers need; satisfied by
// queue.Producer.
type JobQueue interface {
	EnqueueSyncJob(ctx context.Context, job model.SyncJob) error
	EnqueueIngestionJob(ctx context.Context, job model.IngestionJob) error
}

type Handler struct {
	repo     db.Repository
	producer JobQueue
	storage  storage.Storage
	cfg      *config.Config
	log      zerolog.Logger
}

func NewHandler(
	repo db.Repository,
	producer JobQueue,
	store storage.Storage,
	cfg *config.Config,
) *Handler {
	return &Handler{
		repo:     repo,
		producer: producer,
		storage:  store,
		cfg:      cfg,
		log:      logger.Get(),
	}
}

// TriggerSync enqueues a sync run and hands back the sync_id for polling.
// The SyncLog row is created here so the id resolves before a worker picks
// the job up. Initiator identity arrives from the auth layer in headers.
func (h *Handler) TriggerSync(c *gin.Context) {
	var req model.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	scope := model.SyncScope(req.Scope)
	if !scope.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidScope.Error(), "scope": req.Scope})
		return
	}

	credential := model.CredentialServiceAccount
	if req.AccessToken != "" || req.RefreshToken != "" {
		credential = model.CredentialAdminOAuth
	}

	job := model.SyncJob{
		SyncID:         uuid.NewString(),
		Scope:          scope,
		InitiatorEmail: c.GetHeader("X-User-Email"),
		InitiatorRole:  c.GetHeader("X-User-Role"),
		Credential:     credential,
		AccessToken:    req.AccessToken,
		RefreshToken:   req.RefreshToken,
	}

	syncLog := &model.SyncLog{
		SyncID:         job.SyncID,
		InitiatorEmail: job.InitiatorEmail,
		InitiatorRole:  job.InitiatorRole,
		Scope:          scope,
		Status:         model.SyncStatusStarted,
		StartedAt:      time.Now(),
	}
	if err := h.repo.CreateSyncLog(c.Request.Context(), syncLog); err != nil {
		h.log.Error().Err(err).Msg("Failed to create sync log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.producer.EnqueueSyncJob(c.Request.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue sync job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue sync job"})
		return
	}

	h.log.Info().
		Str("sync_id", job.SyncID).
		Str("scope", string(scope)).
		Str("credential", string(credential)).
		Msg("Sync job enqueued")

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Sync job queued successfully",
		"sync_id": job.SyncID,
		"scope":   scope,
	})
}

func (h *Handler) GetSyncStatus(c *gin.Context) {
	syncID := c.Param("sync_id")

	syncLog, err := h.repo.GetSyncLog(c.Request.Context(), syncID)
	if stderrors.Is(err, errors.ErrSyncLogNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sync log not found", "sync_id": syncID})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("sync_id", syncID).Msg("Failed to get sync log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, syncLog)
}

func (h *Handler) GetSyncHistory(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	logs, err := h.repo.ListSyncLogs(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list sync logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"syncs": logs, "count": len(logs)})
}

// UploadAccounts stores a bulk account spreadsheet and queues it for
// ingestion.
func (h *Handler) UploadAccounts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
		return
	}
	defer src.Close()

	s3Path := fmt.Sprintf("uploads/%s-%s", uuid.NewString(), fileHeader.Filename)
	if err := h.storage.Upload(c.Request.Context(), s3Path, src); err != nil {
		h.log.Error().Err(err).Str("s3_path", s3Path).Msg("Failed to store upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}

	fileID, err := h.repo.CreateUploadFile(c.Request.Context(), &model.UploadFile{
		S3Path:     s3Path,
		UploadedBy: c.GetHeader("X-User-Email"),
		Status:     model.FileStatusUploaded,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to record upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.producer.EnqueueIngestionJob(c.Request.Context(), model.IngestionJob{
		FileID: fileID,
		S3Path: s3Path,
	}); err != nil {
		h.log.Error().Err(err).Int64("file_id", fileID).Msg("Failed to enqueue ingestion job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue ingestion"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Upload queued for ingestion",
		"file_id": fileID,
	})
}

func (h *Handler) GetUploadStatus(c *gin.Context) {
	fileID, err := strconv.ParseInt(c.Param("file_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return
	}

	file, err := h.repo.GetUploadFile(c.Request.Context(), fileID)
	if stderrors.Is(err, errors.ErrFileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("file_id", fileID).Msg("Failed to get upload file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, file)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}
