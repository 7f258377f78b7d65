package model

import "time"

// CourseWork mirrors one assignment. Natural key: CourseWorkID.
// Materials keeps the remote attachment list verbatim (JSON) for rendering.
type CourseWork struct {
	ID           int64     `json:"-" db:"id"`
	CourseWorkID string    `json:"course_work_id" db:"course_work_id"`
	CourseID     string    `json:"course_id" db:"course_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	DueDate      time.Time `json:"due_date" db:"due_date"`
	State        string    `json:"state" db:"state"`
	MaxPoints    float64   `json:"max_points" db:"max_points"`
	Materials    string    `json:"materials" db:"materials"`
	RemoteCreatedAt time.Time `json:"remote_created_at" db:"remote_created_at"`
	RemoteUpdatedAt time.Time `json:"remote_updated_at" db:"remote_updated_at"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type SubmissionState string

const (
	SubmissionStateNew      SubmissionState = "NEW"
	SubmissionStateCreated  SubmissionState = "CREATED"
	SubmissionStateTurnedIn SubmissionState = "TURNED_IN"
	SubmissionStateReturned SubmissionState = "RETURNED"
)

// Submission mirrors one student submission. Natural key: SubmissionID.
// UserID is the remote's internal user id; UserEmail is filled in by resolving
// that id against the mirrored users and stays empty when the user has not
// been synced yet.
type Submission struct {
	ID            int64           `json:"-" db:"id"`
	SubmissionID  string          `json:"submission_id" db:"submission_id"`
	CourseID      string          `json:"course_id" db:"course_id"`
	CourseWorkID  string          `json:"course_work_id" db:"course_work_id"`
	UserID        string          `json:"user_id" db:"user_id"`
	UserEmail     string          `json:"user_email,omitempty" db:"user_email"`
	State         SubmissionState `json:"state" db:"state"`
	Late          bool            `json:"late" db:"late"`
	AssignedGrade float64         `json:"assigned_grade" db:"assigned_grade"`
	RemoteCreatedAt time.Time     `json:"remote_created_at" db:"remote_created_at"`
	RemoteUpdatedAt time.Time     `json:"remote_updated_at" db:"remote_updated_at"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}
