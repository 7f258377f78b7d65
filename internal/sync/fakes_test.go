package sync

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/classroom"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/config"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/pkg/errors"
)

// fakeRepo is an in-memory Repository keyed exactly like the real store.
type fakeRepo struct {
	courses     map[string]model.Course
	users       map[string]model.User
	memberships map[string]model.RosterMembership
	coursework  map[string]model.CourseWork
	submissions map[string]model.Submission
	syncLogs    map[string]model.SyncLog
	analytics   map[string]model.Analytics
	schools     map[string]model.School
	uploads     map[int64]model.UploadFile

	// statusHistory records every status written for any sync log, in order.
	statusHistory []model.SyncStatus
	rollups       []model.School

	failUserEmail  string // UpsertUser for this email errors
	failSubmission string // UpsertSubmission for this id errors
	countErr       error  // returned by every Count* call
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:     make(map[string]model.Course),
		users:       make(map[string]model.User),
		memberships: make(map[string]model.RosterMembership),
		coursework:  make(map[string]model.CourseWork),
		submissions: make(map[string]model.Submission),
		syncLogs:    make(map[string]model.SyncLog),
		analytics:   make(map[string]model.Analytics),
		schools:     make(map[string]model.School),
		uploads:     make(map[int64]model.UploadFile),
	}
}

func (f *fakeRepo) UpsertCourse(_ context.Context, c *model.Course) error {
	f.courses[c.CourseID] = *c
	return nil
}

func (f *fakeRepo) ListCourseIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.courses))
	for id := range f.courses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeRepo) UpsertUser(_ context.Context, u *model.User) error {
	if f.failUserEmail != "" && u.Email == f.failUserEmail {
		return fmt.Errorf("simulated upsert failure for %s", u.Email)
	}
	f.users[u.Email] = *u
	return nil
}

func (f *fakeRepo) UpsertRosterMembership(_ context.Context, m *model.RosterMembership) error {
	f.memberships[m.CourseID+"|"+m.UserEmail+"|"+string(m.Role)] = *m
	return nil
}

func (f *fakeRepo) UserEmailsByExternalID(_ context.Context) (map[string]string, error) {
	emails := make(map[string]string)
	for _, u := range f.users {
		if u.ExternalID != "" {
			emails[u.ExternalID] = u.Email
		}
	}
	return emails, nil
}

func (f *fakeRepo) UpsertCourseWork(_ context.Context, w *model.CourseWork) error {
	f.coursework[w.CourseWorkID] = *w
	return nil
}

func (f *fakeRepo) UpsertSubmission(_ context.Context, s *model.Submission) error {
	if f.failSubmission != "" && s.SubmissionID == f.failSubmission {
		return fmt.Errorf("simulated upsert failure for %s", s.SubmissionID)
	}
	f.submissions[s.SubmissionID] = *s
	return nil
}

func (f *fakeRepo) CreateSyncLog(_ context.Context, l *model.SyncLog) error {
	if _, exists := f.syncLogs[l.SyncID]; exists {
		return nil
	}
	f.syncLogs[l.SyncID] = *l
	f.statusHistory = append(f.statusHistory, l.Status)
	return nil
}

func (f *fakeRepo) UpdateSyncLog(_ context.Context, l *model.SyncLog) error {
	f.syncLogs[l.SyncID] = *l
	f.statusHistory = append(f.statusHistory, l.Status)
	return nil
}

func (f *fakeRepo) GetSyncLog(_ context.Context, syncID string) (*model.SyncLog, error) {
	l, ok := f.syncLogs[syncID]
	if !ok {
		return nil, errors.ErrSyncLogNotFound
	}
	return &l, nil
}

func (f *fakeRepo) ListSyncLogs(_ context.Context, limit int) ([]model.SyncLog, error) {
	var logs []model.SyncLog
	for _, l := range f.syncLogs {
		logs = append(logs, l)
		if len(logs) == limit {
			break
		}
	}
	return logs, nil
}

func (f *fakeRepo) CountUsersByRole(_ context.Context, role model.Role) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, u := range f.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountMembershipsByRole(_ context.Context, role model.Role) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, m := range f.memberships {
		if m.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountSubmissions(_ context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.submissions), nil
}

func (f *fakeRepo) CountSubmissionsByState(_ context.Context, state model.SubmissionState) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, s := range f.submissions {
		if s.State == state {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) UpsertAnalytics(_ context.Context, a *model.Analytics) error {
	f.analytics[string(a.MetricType)+"|"+a.Period+"|"+a.District] = *a
	return nil
}

func (f *fakeRepo) SchoolRollups(_ context.Context) ([]model.School, error) {
	return f.rollups, nil
}

func (f *fakeRepo) UpsertSchool(_ context.Context, s *model.School) error {
	f.schools[s.SchoolID] = *s
	return nil
}

func (f *fakeRepo) CreateUploadFile(_ context.Context, file *model.UploadFile) (int64, error) {
	id := int64(len(f.uploads) + 1)
	file.ID = id
	f.uploads[id] = *file
	return id, nil
}

func (f *fakeRepo) GetUploadFile(_ context.Context, fileID int64) (*model.UploadFile, error) {
	file, ok := f.uploads[fileID]
	if !ok {
		return nil, errors.ErrFileNotFound
	}
	return &file, nil
}

func (f *fakeRepo) UpdateUploadFileStatus(_ context.Context, fileID int64, status model.FileStatus, errorMessage *string) error {
	file := f.uploads[fileID]
	file.Status = status
	file.ErrorMessage = errorMessage
	f.uploads[fileID] = file
	return nil
}

// fakeGateway serves canned pages and counts every list call per lister.
type fakeGateway struct {
	coursePages []classroom.CoursePage
	students    map[string][]model.RemoteMember
	teachers    map[string][]model.RemoteMember
	coursework  map[string][]model.RemoteCourseWork
	submissions map[string][]model.RemoteSubmission // keyed courseID/courseWorkID
	profiles    map[string]*model.DirectoryUser

	courseCalls     int
	studentCalls    int
	teacherCalls    int
	courseworkCalls int
	submissionCalls int
	lookupCalls     int

	coursesErr    error
	studentErr    map[string]error // per course
	teacherErr    map[string]error
	courseworkErr map[string]error
	lookupErr     error

	// slow makes every course listing block until the context ends,
	// simulating a remote that never answers.
	slow bool
}

func (g *fakeGateway) ListCourses(ctx context.Context, _ int, pageToken string) (*classroom.CoursePage, error) {
	g.courseCalls++
	if g.slow {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.coursesErr != nil {
		return nil, g.coursesErr
	}
	idx := 0
	if pageToken != "" {
		fmt.Sscanf(pageToken, "p%d", &idx)
	}
	if idx >= len(g.coursePages) {
		return &classroom.CoursePage{}, nil
	}
	return &g.coursePages[idx], nil
}

func (g *fakeGateway) ListStudents(_ context.Context, courseID string, _ int, _ string) (*classroom.MemberPage, error) {
	g.studentCalls++
	if err := g.studentErr[courseID]; err != nil {
		return nil, err
	}
	return &classroom.MemberPage{Students: g.students[courseID]}, nil
}

func (g *fakeGateway) ListTeachers(_ context.Context, courseID string, _ int, _ string) (*classroom.MemberPage, error) {
	g.teacherCalls++
	if err := g.teacherErr[courseID]; err != nil {
		return nil, err
	}
	return &classroom.MemberPage{Teachers: g.teachers[courseID]}, nil
}

func (g *fakeGateway) ListCourseWork(_ context.Context, courseID string, _ int, _ string) (*classroom.CourseWorkPage, error) {
	g.courseworkCalls++
	if err := g.courseworkErr[courseID]; err != nil {
		return nil, err
	}
	return &classroom.CourseWorkPage{CourseWork: g.coursework[courseID]}, nil
}

func (g *fakeGateway) ListSubmissions(_ context.Context, courseID, courseWorkID string, _ int, _ string) (*classroom.SubmissionPage, error) {
	g.submissionCalls++
	return &classroom.SubmissionPage{StudentSubmissions: g.submissions[courseID+"/"+courseWorkID]}, nil
}

func (g *fakeGateway) LookupUserProfile(_ context.Context, userKey string) (*model.DirectoryUser, error) {
	g.lookupCalls++
	if g.lookupErr != nil {
		return nil, g.lookupErr
	}
	if p, ok := g.profiles[userKey]; ok {
		return p, nil
	}
	return &model.DirectoryUser{PrimaryEmail: userKey}, nil
}

// stubCred satisfies classroom.CredentialContext without touching oauth2;
// the tests replace the gateway factory so no HTTP client is ever built.
type stubCred struct {
	directory bool
}

func (c stubCred) Name() string { return "stub" }

func (c stubCred) Client(_ context.Context) (*http.Client, error) { return http.DefaultClient, nil }

func (c stubCred) DirectoryEnabled() bool { return c.directory }

func newTestService(repo *fakeRepo, gw *fakeGateway) *Service {
	cfg := &config.Config{}
	cfg.Sync.PageSize = 100
	cfg.Sync.RunTimeout = 30 * time.Second

	svc := NewService(cfg, repo)
	svc.newGateway = func(_ context.Context, _ config.GoogleConfig, _ classroom.CredentialContext) (classroom.Gateway, error) {
		return gw, nil
	}
	return svc
}
