package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/classroom"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/config"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/db"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/logger"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/queue"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/sync"

	"github.com/rs/zerolog"
)

type SyncWorker struct {
	cfg         *config.Config
	repo        db.Repository
	syncService *sync.Service
	consumer    *queue.Consumer
	workerPool  *WorkerPool
	log         zerolog.Logger
}

func NewSyncWorker(
	cfg *config.Config,
	repo db.Repository,
	redisClient *queue.RedisClient,
) *SyncWorker {
	return &SyncWorker{
		cfg:         cfg,
		repo:        repo,
		syncService: sync.NewService(cfg, repo),
		consumer:    queue.NewConsumer(redisClient, cfg),
		workerPool:  NewWorkerPool(cfg.Workers.Sync.Count),
		log:         logger.Get(),
	}
}

func (w *SyncWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting sync worker")

	w.workerPool.Start(ctx)

	return w.consumer.ConsumeSyncQueue(ctx, w.handleMessage)
}

func (w *SyncWorker) Stop() {
	w.log.Info().Msg("Stopping sync worker")
	w.workerPool.Stop()
}

func (w *SyncWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.SyncJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal sync job")
		return err
	}

	cred, err := w.credentialFor(job)
	if err != nil {
		w.log.Error().Err(err).Str("sync_id", job.SyncID).Msg("Unknown credential kind")
		return err
	}

	w.log.Info().
		Str("sync_id", job.SyncID).
		Str("scope", string(job.Scope)).
		Str("credential", cred.Name()).
		Msg("Processing sync job")

	// A submit failure propagates so the consumer dead-letters the message;
	// dropping it here would strand the pre-created sync log in started.
	err = w.workerPool.Submit(ctx, func(ctx context.Context) error {
		result := w.syncService.Run(ctx, sync.RunRequest{
			SyncID:         job.SyncID,
			Scope:          job.Scope,
			InitiatorEmail: job.InitiatorEmail,
			InitiatorRole:  job.InitiatorRole,
			Credential:     cred,
		})
		if !result.Success {
			// The run already wrote its failure to the sync log; nothing to
			// requeue, a rerun starts a new sync_id.
			w.log.Error().Str("sync_id", result.SyncID).Str("error", result.Error).Msg("Sync run failed")
		}
		return nil
	})
	if err != nil {
		w.log.Error().Err(err).Str("sync_id", job.SyncID).Msg("Failed to submit sync job")
	}
	return err
}

func (w *SyncWorker) credentialFor(job model.SyncJob) (classroom.CredentialContext, error) {
	switch job.Credential {
	case model.CredentialAdminOAuth:
		return classroom.NewAdminOAuthContext(w.cfg.Google, job.AccessToken, job.RefreshToken), nil
	case model.CredentialServiceAccount, "":
		return classroom.NewServiceAccountContext(w.cfg.Google), nil
	default:
		return nil, fmt.Errorf("unsupported credential kind: %s", job.Credential)
	}
}
