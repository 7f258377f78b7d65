package worker

import (
	"context"
	"time"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/config"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/logger"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/queue"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scheduler enqueues a full-scope service-account sync on a fixed interval so
// the mirror stays fresh without an admin pressing the button.
type Scheduler struct {
	cfg      *config.Config
	producer *queue.Producer
	log      zerolog.Logger
}

func NewScheduler(cfg *config.Config, producer *queue.Producer) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		producer: producer,
		log:      logger.Get(),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	interval := s.cfg.Workers.Scheduler.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	s.log.Info().Dur("interval", interval).Msg("Starting sync scheduler")

	if s.cfg.Workers.Scheduler.RunOnStart {
		s.log.Info().Msg("Enqueueing initial full sync on startup")
		if err := s.enqueue(ctx); err != nil {
			s.log.Error().Err(err).Msg("Initial sync enqueue failed")
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Scheduler context cancelled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.enqueue(ctx); err != nil {
				s.log.Error().Err(err).Msg("Scheduled sync enqueue failed")
			}
		}
	}
}

func (s *Scheduler) enqueue(ctx context.Context) error {
	job := model.SyncJob{
		SyncID:         uuid.NewString(),
		Scope:          model.ScopeFull,
		InitiatorEmail: "scheduler@system",
		InitiatorRole:  string(model.RoleAdmin),
		Credential:     model.CredentialServiceAccount,
	}

	if err := s.producer.EnqueueSyncJob(ctx, job); err != nil {
		return err
	}

	s.log.Info().Str("sync_id", job.SyncID).Msg("Scheduled full sync enqueued")
	return nil
}
