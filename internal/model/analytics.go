package model

import (
	"strings"
	"time"
)

type MetricType string

const (
	MetricEnrollment MetricType = "enrollment"
	MetricCompletion MetricType = "completion"
)

// Analytics holds one derived roll-up metric. Natural key:
// (MetricType, Period, District). Recomputed wholesale on every full run, so
// values are stale until the next one.
type Analytics struct {
	ID          int64      `json:"-" db:"id"`
	MetricType  MetricType `json:"metric_type" db:"metric_type"`
	Period      string     `json:"period" db:"period"`
	District    string     `json:"district" db:"district"`
	MetricValue float64    `json:"metric_value" db:"metric_value"`
	Metadata    string     `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// School is the per-district aggregate row. Natural key: SchoolID, the
// slugified district name.
type School struct {
	ID            int64     `json:"-" db:"id"`
	SchoolID      string    `json:"school_id" db:"school_id"`
	District      string    `json:"district" db:"district"`
	StudentCount  int       `json:"student_count" db:"student_count"`
	TeacherCount  int       `json:"teacher_count" db:"teacher_count"`
	ActiveCourses int       `json:"active_courses" db:"active_courses"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SchoolID slugifies a district name into a stable key ("North District" ->
// "north-district").
func SchoolID(district string) string {
	slug := strings.ToLower(strings.TrimSpace(district))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}

// Period formats t as the monthly analytics period.
func Period(t time.Time) string {
	return t.Format("2006-01")
}
