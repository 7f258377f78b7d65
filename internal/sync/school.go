package sync

import (
	"context"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/db"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/logger"

	"github.com/rs/zerolog"
)

// RollupBuilder recomputes the per-district school aggregates from the
// mirror. Wholesale: every district present in the user rows gets its row
// rewritten on each full run.
type RollupBuilder struct {
	repo db.Repository
	log  zerolog.Logger
}

func NewRollupBuilder(repo db.Repository) *RollupBuilder {
	return &RollupBuilder{
		repo: repo,
		log:  logger.Get(),
	}
}

func (b *RollupBuilder) Recompute(ctx context.Context) error {
	schools, err := b.repo.SchoolRollups(ctx)
	if err != nil {
		return err
	}

	for i := range schools {
		if err := b.repo.UpsertSchool(ctx, &schools[i]); err != nil {
			return err
		}
	}

	b.log.Info().Int("districts", len(schools)).Msg("School rollups recomputed")
	return nil
}
