package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// User mirrors one person across every course. Natural key: Email, exactly as
// the remote profile returns it; Course.OwnerID and Submission.UserID join to
// ExternalID instead.
type User struct {
	ID         int64  `json:"-" db:"id"`
	Email      string `json:"email" db:"email"`
	ExternalID string `json:"external_id" db:"external_id"`
	GivenName  string `json:"given_name" db:"given_name"`
	FamilyName string `json:"family_name" db:"family_name"`
	FullName   string `json:"full_name" db:"full_name"`
	PhotoURL   string `json:"photo_url" db:"photo_url"`
	Role       Role   `json:"role" db:"role"`

	// Demographic attributes from the Admin Directory custom schemas.
	// Best-effort: populated only on OAuth-credentialed runs, last write wins.
	Gender     string `json:"gender,omitempty" db:"gender"`
	District   string `json:"district,omitempty" db:"district"`
	Grade      string `json:"grade,omitempty" db:"grade"`
	SchoolName string `json:"school_name,omitempty" db:"school_name"`
	Age        string `json:"age,omitempty" db:"age"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RosterMembership records that a user holds a role in a course.
// Composite natural key: (CourseID, UserEmail, Role). Memberships are never
// pruned when a user disappears from the remote roster.
type RosterMembership struct {
	ID        int64     `json:"-" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	UserEmail string    `json:"user_email" db:"user_email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
