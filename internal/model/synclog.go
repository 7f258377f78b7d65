package model

import "time"

type SyncScope string

const (
	ScopeFull        SyncScope = "full"
	ScopeCourses     SyncScope = "courses"
	ScopeUsers       SyncScope = "users"
	ScopeSubmissions SyncScope = "submissions"
	ScopeIncremental SyncScope = "incremental"
)

func (s SyncScope) Valid() bool {
	switch s {
	case ScopeFull, ScopeCourses, ScopeUsers, ScopeSubmissions, ScopeIncremental:
		return true
	}
	return false
}

type SyncStatus string

const (
	SyncStatusStarted    SyncStatus = "started"
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusCompleted  SyncStatus = "completed"
	SyncStatusFailed     SyncStatus = "failed"
)

// SyncLog is the audit trail for one orchestration run. One row per run,
// keyed by SyncID, appended at start and mutated in place as the run moves
// through started -> in_progress -> completed|failed.
type SyncLog struct {
	ID               int64      `json:"-" db:"id"`
	SyncID           string     `json:"sync_id" db:"sync_id"`
	InitiatorEmail   string     `json:"initiator_email" db:"initiator_email"`
	InitiatorRole    string     `json:"initiator_role" db:"initiator_role"`
	Scope            SyncScope  `json:"scope" db:"scope"`
	Status           SyncStatus `json:"status" db:"status"`
	StartedAt        time.Time  `json:"started_at" db:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	DurationMs       int64      `json:"duration_ms" db:"duration_ms"`
	RecordsProcessed int        `json:"records_processed" db:"records_processed"`
	RecordsSynced    int        `json:"records_synced" db:"records_synced"`
	RecordsFailed    int        `json:"records_failed" db:"records_failed"`
	Metadata         string     `json:"metadata,omitempty" db:"metadata"`
	ErrorMessage     *string    `json:"error_message,omitempty" db:"error_message"`
}

// SyncResult is what the caller of a run gets back.
type SyncResult struct {
	Success          bool          `json:"success"`
	SyncID           string        `json:"sync_id"`
	Duration         time.Duration `json:"duration"`
	RecordsProcessed int           `json:"records_processed"`
	RecordsSynced    int           `json:"records_synced"`
	RecordsFailed    int           `json:"records_failed"`
	Error            string        `json:"error,omitempty"`
}
