package classroom

import (
	"context"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
)

// Gateway is the remote listing contract the sync phases run against. All
// listers page with (pageSize, pageToken) and hand back the next token, empty
// when the listing is exhausted.
type Gateway interface {
	ListCourses(ctx context.Context, pageSize int, pageToken string) (*CoursePage, error)
	ListStudents(ctx context.Context, courseID string, pageSize int, pageToken string) (*MemberPage, error)
	ListTeachers(ctx context.Context, courseID string, pageSize int, pageToken string) (*MemberPage, error)
	ListCourseWork(ctx context.Context, courseID string, pageSize int, pageToken string) (*CourseWorkPage, error)
	ListSubmissions(ctx context.Context, courseID, courseWorkID string, pageSize int, pageToken string) (*SubmissionPage, error)

	// LookupUserProfile is the Admin Directory full-projection fetch used for
	// demographic enrichment. Only available when the credential context has
	// directory access; callers must treat failures as best-effort.
	LookupUserProfile(ctx context.Context, userKey string) (*model.DirectoryUser, error)
}

type CoursePage struct {
	Courses       []model.RemoteCourse `json:"courses"`
	NextPageToken string               `json:"nextPageToken"`
}

type MemberPage struct {
	Students      []model.RemoteMember `json:"students"`
	Teachers      []model.RemoteMember `json:"teachers"`
	NextPageToken string               `json:"nextPageToken"`
}

// Members returns whichever roster list the page carries.
func (p *MemberPage) Members() []model.RemoteMember {
	if len(p.Students) > 0 {
		return p.Students
	}
	return p.Teachers
}

type CourseWorkPage struct {
	CourseWork    []model.RemoteCourseWork `json:"courseWork"`
	NextPageToken string                   `json:"nextPageToken"`
}

type SubmissionPage struct {
	StudentSubmissions []model.RemoteSubmission `json:"studentSubmissions"`
	NextPageToken      string                   `json:"nextPageToken"`
}
