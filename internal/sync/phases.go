package sync

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/classroom"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/pkg/errors"
)

// enrichFunc is the optional directory lookup applied to roster members.
// Nil when the active credential has no directory access.
type enrichFunc func(ctx context.Context, userKey string) (*model.DirectoryUser, error)

func (s *Service) syncCourses(ctx context.Context, gw classroom.Gateway) (Tally, error) {
	return reconcile(ctx, s.log,
		func(ctx context.Context, token string) ([]model.RemoteCourse, string, error) {
			page, err := gw.ListCourses(ctx, s.pageSize, token)
			if err != nil {
				return nil, "", err
			}
			return page.Courses, page.NextPageToken, nil
		},
		func(rc model.RemoteCourse) string { return rc.ID },
		func(ctx context.Context, rc model.RemoteCourse) error {
			return s.repo.UpsertCourse(ctx, mapCourse(&rc))
		})
}

// syncRosters walks the locally mirrored courses (not a remote course
// listing) and reconciles each course's student and teacher rosters. A course
// whose listing fails is skipped and reported back; the rest are still
// attempted. Two failures escalate to phase-fatal: a revoked credential
// (retrying the remaining courses would fail the same way) and a run where
// every course's roster was unavailable.
func (s *Service) syncRosters(ctx context.Context, gw classroom.Gateway, enrich enrichFunc) (Tally, []string, error) {
	courseIDs, err := s.repo.ListCourseIDs(ctx)
	if err != nil {
		return Tally{}, nil, err
	}

	var tally Tally
	var failedCourses []string
	failed := make(map[string]bool)

	for _, courseID := range courseIDs {
		courseID := courseID
		log := s.log.With().Str("course_id", courseID).Logger()

		studentTally, err := reconcile(ctx, log,
			func(ctx context.Context, token string) ([]model.RemoteMember, string, error) {
				page, err := gw.ListStudents(ctx, courseID, s.pageSize, token)
				if err != nil {
					return nil, "", err
				}
				return page.Members(), page.NextPageToken, nil
			},
			memberKey,
			func(ctx context.Context, m model.RemoteMember) error {
				return s.upsertMember(ctx, courseID, m, model.RoleStudent, enrich)
			})
		tally.Add(studentTally)
		if err != nil {
			if stderrors.Is(err, errors.ErrAuthenticationFailed) {
				return tally, failedCourses, err
			}
			log.Error().Err(err).Msg("Student roster listing failed, skipping course")
			if !failed[courseID] {
				failed[courseID] = true
				failedCourses = append(failedCourses, courseID)
			}
		}

		teacherTally, err := reconcile(ctx, log,
			func(ctx context.Context, token string) ([]model.RemoteMember, string, error) {
				page, err := gw.ListTeachers(ctx, courseID, s.pageSize, token)
				if err != nil {
					return nil, "", err
				}
				return page.Members(), page.NextPageToken, nil
			},
			memberKey,
			func(ctx context.Context, m model.RemoteMember) error {
				return s.upsertMember(ctx, courseID, m, model.RoleTeacher, enrich)
			})
		tally.Add(teacherTally)
		if err != nil {
			if stderrors.Is(err, errors.ErrAuthenticationFailed) {
				return tally, failedCourses, err
			}
			log.Error().Err(err).Msg("Teacher roster listing failed, skipping course")
			if !failed[courseID] {
				failed[courseID] = true
				failedCourses = append(failedCourses, courseID)
			}
		}
	}

	if len(courseIDs) > 0 && len(failed) == len(courseIDs) {
		return tally, failedCourses, fmt.Errorf("all %d course rosters unavailable", len(courseIDs))
	}
	return tally, failedCourses, nil
}

func (s *Service) upsertMember(ctx context.Context, courseID string, m model.RemoteMember, role model.Role, enrich enrichFunc) error {
	user := mapMember(&m, role)

	// Email is the user's natural key; without one the row would collide
	// with every other email-less member.
	if user.Email == "" {
		return fmt.Errorf("roster member %s has no email address", m.UserID)
	}

	if enrich != nil {
		dir, err := enrich(ctx, user.Email)
		if err != nil {
			// Best-effort: the base profile still gets upserted.
			s.log.Warn().Err(err).Str("email", user.Email).Msg("Directory enrichment failed")
		} else {
			classroom.ApplyCustomSchemas(user, dir)
		}
	}

	if err := s.repo.UpsertUser(ctx, user); err != nil {
		return err
	}

	return s.repo.UpsertRosterMembership(ctx, &model.RosterMembership{
		CourseID:  courseID,
		UserEmail: user.Email,
		Role:      role,
	})
}

// syncCourseWork reconciles coursework and submissions per local course. Each
// course's coursework listing, each coursework's upsert, and each
// coursework's submission listing are independent failure units.
func (s *Service) syncCourseWork(ctx context.Context, gw classroom.Gateway) (Tally, []string, error) {
	courseIDs, err := s.repo.ListCourseIDs(ctx)
	if err != nil {
		return Tally{}, nil, err
	}

	emailsByID, err := s.repo.UserEmailsByExternalID(ctx)
	if err != nil {
		return Tally{}, nil, err
	}

	var tally Tally
	var failedUnits []string

	for _, courseID := range courseIDs {
		courseID := courseID
		log := s.log.With().Str("course_id", courseID).Logger()

		var works []model.RemoteCourseWork
		workTally, err := reconcile(ctx, log,
			func(ctx context.Context, token string) ([]model.RemoteCourseWork, string, error) {
				page, err := gw.ListCourseWork(ctx, courseID, s.pageSize, token)
				if err != nil {
					return nil, "", err
				}
				works = append(works, page.CourseWork...)
				return page.CourseWork, page.NextPageToken, nil
			},
			func(w model.RemoteCourseWork) string { return w.ID },
			func(ctx context.Context, w model.RemoteCourseWork) error {
				return s.repo.UpsertCourseWork(ctx, mapCourseWork(courseID, &w))
			})
		tally.Add(workTally)
		if err != nil {
			if stderrors.Is(err, errors.ErrAuthenticationFailed) {
				return tally, failedUnits, err
			}
			log.Error().Err(err).Msg("Coursework listing failed, skipping course")
			failedUnits = append(failedUnits, courseID)
			continue
		}

		for _, work := range works {
			work := work
			subTally, err := reconcile(ctx, log,
				func(ctx context.Context, token string) ([]model.RemoteSubmission, string, error) {
					page, err := gw.ListSubmissions(ctx, courseID, work.ID, s.pageSize, token)
					if err != nil {
						return nil, "", err
					}
					return page.StudentSubmissions, page.NextPageToken, nil
				},
				func(sub model.RemoteSubmission) string { return sub.ID },
				func(ctx context.Context, sub model.RemoteSubmission) error {
					return s.repo.UpsertSubmission(ctx, mapSubmission(courseID, work.ID, &sub, emailsByID))
				})
			tally.Add(subTally)
			if err != nil {
				if stderrors.Is(err, errors.ErrAuthenticationFailed) {
					return tally, failedUnits, err
				}
				log.Error().Err(err).Str("course_work_id", work.ID).Msg("Submission listing failed, skipping coursework")
				failedUnits = append(failedUnits, courseID+"/"+work.ID)
			}
		}
	}

	return tally, failedUnits, nil
}

func memberKey(m model.RemoteMember) string {
	if m.Profile.EmailAddress != "" {
		return m.Profile.EmailAddress
	}
	return m.UserID
}

func mapCourse(rc *model.RemoteCourse) *model.Course {
	return &model.Course{
		CourseID:           rc.ID,
		Name:               rc.Name,
		Section:            rc.Section,
		Description:        rc.Description,
		DescriptionHeading: rc.DescriptionHeading,
		Room:               rc.Room,
		OwnerID:            rc.OwnerID,
		EnrollmentCode:     rc.EnrollmentCode,
		CourseState:        model.CourseState(rc.CourseState),
		RemoteCreatedAt:    model.RemoteTime(rc.CreationTime),
		RemoteUpdatedAt:    model.RemoteTime(rc.UpdateTime),
	}
}

func mapMember(m *model.RemoteMember, role model.Role) *model.User {
	return &model.User{
		Email:      m.Profile.EmailAddress,
		ExternalID: m.UserID,
		GivenName:  m.Profile.Name.GivenName,
		FamilyName: m.Profile.Name.FamilyName,
		FullName:   m.Profile.Name.FullName,
		PhotoURL:   m.Profile.PhotoURL,
		Role:       role,
	}
}

func mapCourseWork(courseID string, w *model.RemoteCourseWork) *model.CourseWork {
	materials := ""
	if len(w.Materials) > 0 {
		if data, err := json.Marshal(w.Materials); err == nil {
			materials = string(data)
		}
	}

	return &model.CourseWork{
		CourseWorkID:    w.ID,
		CourseID:        courseID,
		Title:           w.Title,
		Description:     w.Description,
		DueDate:         w.Due(),
		State:           w.State,
		MaxPoints:       w.MaxPoints,
		Materials:       materials,
		RemoteCreatedAt: model.RemoteTime(w.CreationTime),
		RemoteUpdatedAt: model.RemoteTime(w.UpdateTime),
	}
}

// mapSubmission resolves the remote's internal user id to the mirrored user's
// email; unsynced users leave UserEmail empty rather than storing the opaque
// id in an email field.
func mapSubmission(courseID, courseWorkID string, sub *model.RemoteSubmission, emailsByID map[string]string) *model.Submission {
	return &model.Submission{
		SubmissionID:    sub.ID,
		CourseID:        courseID,
		CourseWorkID:    courseWorkID,
		UserID:          sub.UserID,
		UserEmail:       emailsByID[sub.UserID],
		State:           model.SubmissionState(sub.State),
		Late:            sub.Late,
		AssignedGrade:   sub.AssignedGrade,
		RemoteCreatedAt: model.RemoteTime(sub.CreationTime),
		RemoteUpdatedAt: model.RemoteTime(sub.UpdateTime),
	}
}
