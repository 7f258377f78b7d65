package model

import "time"

// Remote shapes as the Classroom and Admin Directory APIs return them.
// Mapping into the mirror entities happens in the sync phases; the one piece
// of assembly done here is the split due-date, so no caller rebuilds it.

type RemoteCourse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Section            string `json:"section"`
	Description        string `json:"description"`
	DescriptionHeading string `json:"descriptionHeading"`
	Room               string `json:"room"`
	OwnerID            string `json:"ownerId"`
	EnrollmentCode     string `json:"enrollmentCode"`
	CourseState        string `json:"courseState"`
	CreationTime       string `json:"creationTime"`
	UpdateTime         string `json:"updateTime"`
}

type RemoteName struct {
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	FullName   string `json:"fullName"`
}

type RemoteProfile struct {
	ID           string     `json:"id"`
	EmailAddress string     `json:"emailAddress"`
	Name         RemoteName `json:"name"`
	PhotoURL     string     `json:"photoUrl"`
}

// RemoteMember is one roster entry (a student or teacher of a course).
type RemoteMember struct {
	CourseID string        `json:"courseId"`
	UserID   string        `json:"userId"`
	Profile  RemoteProfile `json:"profile"`
}

// RemoteDate is the split y/m/d the API uses for due dates. Zero fields mean
// the assignment has no due date.
type RemoteDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type RemoteTimeOfDay struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

type RemoteCourseWork struct {
	ID           string           `json:"id"`
	CourseID     string           `json:"courseId"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	DueDate      *RemoteDate      `json:"dueDate,omitempty"`
	DueTime      *RemoteTimeOfDay `json:"dueTime,omitempty"`
	State        string           `json:"state"`
	MaxPoints    float64          `json:"maxPoints"`
	Materials    []map[string]interface{} `json:"materials,omitempty"`
	CreationTime string           `json:"creationTime"`
	UpdateTime   string           `json:"updateTime"`
}

// Due assembles the split date/time fields into one timestamp (UTC). A nil
// date yields the zero time, never an error.
func (w *RemoteCourseWork) Due() time.Time {
	if w.DueDate == nil || w.DueDate.Year == 0 {
		return time.Time{}
	}
	hours, minutes := 0, 0
	if w.DueTime != nil {
		hours, minutes = w.DueTime.Hours, w.DueTime.Minutes
	}
	return time.Date(w.DueDate.Year, time.Month(w.DueDate.Month), w.DueDate.Day,
		hours, minutes, 0, 0, time.UTC)
}

type RemoteSubmission struct {
	ID            string  `json:"id"`
	CourseID      string  `json:"courseId"`
	CourseWorkID  string  `json:"courseWorkId"`
	UserID        string  `json:"userId"`
	State         string  `json:"state"`
	Late          bool    `json:"late"`
	AssignedGrade float64 `json:"assignedGrade"`
	CreationTime  string  `json:"creationTime"`
	UpdateTime    string  `json:"updateTime"`
}

// DirectoryUser is the full-projection Admin Directory lookup, carrying the
// role-specific custom schemas used for demographic enrichment.
type DirectoryUser struct {
	PrimaryEmail  string                            `json:"primaryEmail"`
	CustomSchemas map[string]map[string]interface{} `json:"customSchemas,omitempty"`
}

// RemoteTime parses an RFC 3339 timestamp as the API formats them; malformed
// or empty input yields the zero time.
func RemoteTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
