package sync

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/classroom"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/config"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/db"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/logger"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunRequest describes one orchestration run. Authorization of the initiator
// is the caller's concern; the orchestrator trusts the identity it is given.
type RunRequest struct {
	// SyncID may be pre-allocated by the enqueuer so callers can poll the
	// SyncLog before the run starts. Empty means the orchestrator generates
	// one.
	SyncID         string
	Scope          model.SyncScope
	InitiatorEmail string
	InitiatorRole  string
	Credential     classroom.CredentialContext
}

type gatewayFactory func(ctx context.Context, cfg config.GoogleConfig, cred classroom.CredentialContext) (classroom.Gateway, error)

// Service orchestrates a sync run: phase selection by scope, counter
// aggregation, and the SyncLog lifecycle
// (started -> in_progress -> completed|failed).
type Service struct {
	cfg        *config.Config
	repo       db.Repository
	aggregator *Aggregator
	rollups    *RollupBuilder
	newGateway gatewayFactory
	pageSize   int
	log        zerolog.Logger
}

func NewService(cfg *config.Config, repo db.Repository) *Service {
	return &Service{
		cfg:        cfg,
		repo:       repo,
		aggregator: NewAggregator(repo),
		rollups:    NewRollupBuilder(repo),
		newGateway: func(ctx context.Context, gcfg config.GoogleConfig, cred classroom.CredentialContext) (classroom.Gateway, error) {
			return classroom.NewGateway(ctx, gcfg, cred)
		},
		pageSize: cfg.Sync.PageSize,
		log:      logger.Get(),
	}
}

// Run executes one synchronization run and always returns a structured
// result; failures are reported through Success=false, never a dangling
// in_progress SyncLog row.
func (s *Service) Run(ctx context.Context, req RunRequest) *model.SyncResult {
	if req.SyncID == "" {
		req.SyncID = uuid.NewString()
	}

	log := s.log.With().Str("sync_id", req.SyncID).Str("scope", string(req.Scope)).Logger()

	if !req.Scope.Valid() {
		return &model.SyncResult{Success: false, SyncID: req.SyncID, Error: errors.ErrInvalidScope.Error()}
	}

	started := time.Now()
	syncLog := &model.SyncLog{
		SyncID:         req.SyncID,
		InitiatorEmail: req.InitiatorEmail,
		InitiatorRole:  req.InitiatorRole,
		Scope:          req.Scope,
		Status:         model.SyncStatusStarted,
		StartedAt:      started,
	}

	// The audit row is written before any phase runs; even a run where every
	// phase fails remains inspectable by sync_id.
	if err := s.repo.CreateSyncLog(ctx, syncLog); err != nil {
		log.Error().Err(err).Msg("Failed to create sync log")
		return &model.SyncResult{Success: false, SyncID: req.SyncID, Error: err.Error()}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Sync.RunTimeout)
	defer cancel()

	syncLog.Status = model.SyncStatusInProgress
	if err := s.repo.UpdateSyncLog(ctx, syncLog); err != nil {
		log.Error().Err(err).Msg("Failed to mark sync log in progress")
	}

	log.Info().Str("credential", req.Credential.Name()).Msg("Sync run started")

	tally, meta, phaseErrs := s.runPhases(runCtx, log, req)

	finished := time.Now()
	syncLog.FinishedAt = &finished
	syncLog.DurationMs = finished.Sub(started).Milliseconds()
	syncLog.RecordsProcessed = tally.Processed
	syncLog.RecordsSynced = tally.Synced
	syncLog.RecordsFailed = tally.Failed
	if data, err := json.Marshal(meta); err == nil {
		syncLog.Metadata = string(data)
	}

	result := &model.SyncResult{
		SyncID:           req.SyncID,
		Duration:         finished.Sub(started),
		RecordsProcessed: tally.Processed,
		RecordsSynced:    tally.Synced,
		RecordsFailed:    tally.Failed,
	}

	if len(phaseErrs) > 0 {
		msg := joinErrors(phaseErrs)
		if stderrors.Is(runCtx.Err(), context.DeadlineExceeded) {
			msg = errors.ErrRunTimeout.Error() + ": " + msg
		}
		syncLog.Status = model.SyncStatusFailed
		syncLog.ErrorMessage = &msg
		result.Success = false
		result.Error = msg
		log.Error().Str("error", msg).Msg("Sync run failed")
	} else {
		syncLog.Status = model.SyncStatusCompleted
		result.Success = true
		log.Info().
			Int("processed", tally.Processed).
			Int("synced", tally.Synced).
			Int("failed", tally.Failed).
			Dur("duration", result.Duration).
			Msg("Sync run completed")
	}

	// Write the terminal status with a fresh context; the run context may
	// already be past its deadline.
	if err := s.repo.UpdateSyncLog(context.WithoutCancel(ctx), syncLog); err != nil {
		log.Error().Err(err).Msg("Failed to finalize sync log")
	}

	return result
}

// runPhases executes the scope's phases in order, collecting tallies and
// phase-fatal errors. A failed phase never prevents the phases after it from
// running against whatever has been reconciled so far.
func (s *Service) runPhases(ctx context.Context, log zerolog.Logger, req RunRequest) (Tally, map[string]interface{}, []error) {
	var tally Tally
	meta := map[string]interface{}{"last_sync": time.Now().UTC().Format(time.RFC3339)}
	var phaseErrs []error

	gw, err := s.newGateway(ctx, s.cfg.Google, req.Credential)
	if err != nil {
		return tally, meta, []error{errors.NewPhaseError("gateway", err)}
	}

	var enrich enrichFunc
	if req.Credential.DirectoryEnabled() {
		enrich = gw.LookupUserProfile
	}

	scope := req.Scope

	if scope == model.ScopeFull || scope == model.ScopeCourses || scope == model.ScopeIncremental {
		t, err := s.syncCourses(ctx, gw)
		tally.Add(t)
		meta["courses"] = t
		if err != nil {
			phaseErrs = append(phaseErrs, errors.NewPhaseError("courses", err))
			log.Error().Err(err).Msg("Course phase failed")
		}
	}

	if scope == model.ScopeFull || scope == model.ScopeUsers || scope == model.ScopeIncremental {
		t, failedCourses, err := s.syncRosters(ctx, gw, enrich)
		tally.Add(t)
		meta["rosters"] = t
		if len(failedCourses) > 0 {
			meta["courses_failed"] = failedCourses
		}
		if err != nil {
			phaseErrs = append(phaseErrs, errors.NewPhaseError("rosters", err))
			log.Error().Err(err).Msg("Roster phase failed")
		}
	}

	if scope == model.ScopeFull || scope == model.ScopeSubmissions {
		t, failedUnits, err := s.syncCourseWork(ctx, gw)
		tally.Add(t)
		meta["coursework"] = t
		if len(failedUnits) > 0 {
			meta["coursework_failed"] = failedUnits
		}
		if err != nil {
			phaseErrs = append(phaseErrs, errors.NewPhaseError("coursework", err))
			log.Error().Err(err).Msg("Coursework phase failed")
		}
	}

	if scope == model.ScopeFull {
		if err := s.aggregator.Recompute(ctx); err != nil {
			phaseErrs = append(phaseErrs, errors.NewPhaseError("analytics", err))
			log.Error().Err(err).Msg("Analytics phase failed")
		}
		if err := s.rollups.Recompute(ctx); err != nil {
			phaseErrs = append(phaseErrs, errors.NewPhaseError("schools", err))
			log.Error().Err(err).Msg("School rollup phase failed")
		}
	}

	return tally, meta, phaseErrs
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
