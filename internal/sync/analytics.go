package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/db"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/logger"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"

	"github.com/rs/zerolog"
)

// Aggregator recomputes the monthly roll-up metrics from the reconciled
// mirror. Pure read-then-write over the local store; no remote calls.
type Aggregator struct {
	repo db.Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewAggregator(repo db.Repository) *Aggregator {
	return &Aggregator{
		repo: repo,
		log:  logger.Get(),
		now:  time.Now,
	}
}

func (a *Aggregator) Recompute(ctx context.Context) error {
	period := model.Period(a.now())

	if err := a.recomputeEnrollment(ctx, period); err != nil {
		return err
	}
	return a.recomputeCompletion(ctx, period)
}

func (a *Aggregator) recomputeEnrollment(ctx context.Context, period string) error {
	total, err := a.repo.CountUsersByRole(ctx, model.RoleStudent)
	if err != nil {
		return err
	}
	active, err := a.repo.CountMembershipsByRole(ctx, model.RoleStudent)
	if err != nil {
		return err
	}

	meta, _ := json.Marshal(map[string]int{"active_enrollments": active})

	a.log.Info().Str("period", period).Int("students", total).Int("active", active).
		Msg("Enrollment metric recomputed")

	return a.repo.UpsertAnalytics(ctx, &model.Analytics{
		MetricType:  model.MetricEnrollment,
		Period:      period,
		MetricValue: float64(total),
		Metadata:    string(meta),
	})
}

func (a *Aggregator) recomputeCompletion(ctx context.Context, period string) error {
	total, err := a.repo.CountSubmissions(ctx)
	if err != nil {
		return err
	}
	turnedIn, err := a.repo.CountSubmissionsByState(ctx, model.SubmissionStateTurnedIn)
	if err != nil {
		return err
	}

	// No submissions means a completion rate of zero, not a division error.
	rate := 0.0
	if total > 0 {
		rate = float64(turnedIn) / float64(total)
	}

	meta, _ := json.Marshal(map[string]int{"total_submissions": total, "turned_in": turnedIn})

	a.log.Info().Str("period", period).Float64("completion", rate).
		Msg("Completion metric recomputed")

	return a.repo.UpsertAnalytics(ctx, &model.Analytics{
		MetricType:  model.MetricCompletion,
		Period:      period,
		MetricValue: rate,
		Metadata:    string(meta),
	})
}
