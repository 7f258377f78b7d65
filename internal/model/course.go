package model

import "time"

type CourseState string

const (
	CourseStateActive      CourseState = "ACTIVE"
	CourseStateArchived    CourseState = "ARCHIVED"
	CourseStateProvisioned CourseState = "PROVISIONED"
	CourseStateDeclined    CourseState = "DECLINED"
	CourseStateSuspended   CourseState = "SUSPENDED"
)

// Course mirrors one Classroom course. Natural key: CourseID (the remote
// identifier). Rows are only ever created or updated by sync runs; a course
// missing from the remote listing is kept as-is.
type Course struct {
	ID                 int64       `json:"-" db:"id"`
	CourseID           string      `json:"course_id" db:"course_id"`
	Name               string      `json:"name" db:"name"`
	Section            string      `json:"section" db:"section"`
	Description        string      `json:"description" db:"description"`
	DescriptionHeading string      `json:"description_heading" db:"description_heading"`
	Room               string      `json:"room" db:"room"`
	OwnerID            string      `json:"owner_id" db:"owner_id"`
	EnrollmentCode     string      `json:"enrollment_code" db:"enrollment_code"`
	CourseState        CourseState `json:"course_state" db:"course_state"`
	RemoteCreatedAt    time.Time   `json:"remote_created_at" db:"remote_created_at"`
	RemoteUpdatedAt    time.Time   `json:"remote_updated_at" db:"remote_updated_at"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}
