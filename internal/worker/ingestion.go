package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/config"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/db"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/logger"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/queue"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/spreadsheet"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/storage"

	"github.com/rs/zerolog"
)

// IngestionWorker processes bulk account uploads: fetch the spreadsheet from
// S3, parse and validate the rows, and upsert the accounts into the mirror.
type IngestionWorker struct {
	cfg        *config.Config
	repo       db.Repository
	storage    storage.Storage
	parser     spreadsheet.ParsingStrategy
	consumer   *queue.Consumer
	workerPool *WorkerPool
	log        zerolog.Logger
}

func NewIngestionWorker(
	cfg *config.Config,
	repo db.Repository,
	storage storage.Storage,
	redisClient *queue.RedisClient,
) *IngestionWorker {
	return &IngestionWorker{
		cfg:        cfg,
		repo:       repo,
		storage:    storage,
		parser:     spreadsheet.NewExcelStrategy(),
		consumer:   queue.NewConsumer(redisClient, cfg),
		workerPool: NewWorkerPool(cfg.Workers.Ingestion.Count),
		log:        logger.Get(),
	}
}

func (w *IngestionWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting ingestion worker")

	w.workerPool.Start(ctx)

	return w.consumer.ConsumeIngestionQueue(ctx, w.handleMessage)
}

func (w *IngestionWorker) Stop() {
	w.log.Info().Msg("Stopping ingestion worker")
	w.workerPool.Stop()
}

func (w *IngestionWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.IngestionJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal ingestion job")
		return err
	}

	w.log.Info().Int64("file_id", job.FileID).Str("s3_path", job.S3Path).Msg("Processing ingestion job")

	err := w.workerPool.Submit(ctx, func(ctx context.Context) error {
		return w.processFile(ctx, job)
	})
	if err != nil {
		w.log.Error().Err(err).Int64("file_id", job.FileID).Msg("Failed to submit ingestion job")
	}
	return err
}

func (w *IngestionWorker) processFile(ctx context.Context, job model.IngestionJob) error {
	log := w.log.With().Int64("file_id", job.FileID).Logger()

	reader, err := w.storage.Download(ctx, job.S3Path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to download file")
		return w.markFailed(ctx, job.FileID, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read file data")
		return w.markFailed(ctx, job.FileID, err)
	}

	rows, err := w.parser.Parse(ctx, data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse spreadsheet")
		return w.markFailed(ctx, job.FileID, err)
	}

	if err := w.parser.Validate(ctx, rows); err != nil {
		log.Error().Err(err).Msg("Account validation failed")
		return w.markFailed(ctx, job.FileID, err)
	}

	// Per-row isolation: a bad row is logged and skipped, the rest of the
	// upload still lands.
	upserted := 0
	failed := 0
	for _, row := range rows {
		user := &model.User{
			Email:      row.Email,
			GivenName:  row.GivenName,
			FamilyName: row.FamilyName,
			FullName:   row.GivenName + " " + row.FamilyName,
			Role:       model.Role(row.Role),
			District:   row.District,
			Grade:      row.Grade,
			SchoolName: row.SchoolName,
		}
		if err := w.repo.UpsertUser(ctx, user); err != nil {
			log.Error().Err(err).Str("email", row.Email).Msg("Failed to upsert account")
			failed++
			continue
		}
		upserted++
	}

	// A partially-failed upload still lands as PARSED_OK but carries the
	// skipped count so it is distinguishable from a clean one.
	var statusMsg *string
	if failed > 0 {
		msg := fmt.Sprintf("%d of %d rows failed to upsert", failed, len(rows))
		statusMsg = &msg
	}
	if err := w.repo.UpdateUploadFileStatus(ctx, job.FileID, model.FileStatusParsedOK, statusMsg); err != nil {
		log.Error().Err(err).Msg("Failed to update file status")
		return err
	}

	log.Info().Int("accounts", upserted).Int("failed", failed).Int("rows", len(rows)).Msg("Upload processed")
	return nil
}

func (w *IngestionWorker) markFailed(ctx context.Context, fileID int64, cause error) error {
	errorMsg := cause.Error()
	if err := w.repo.UpdateUploadFileStatus(ctx, fileID, model.FileStatusParsedFail, &errorMsg); err != nil {
		w.log.Error().Err(err).Int64("file_id", fileID).Msg("Failed to update file status")
	}
	return cause
}
