package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/internal/model"
	"github.com/Digi9ReachInfoSystems/google-classroom-sub000/pkg/errors"
)

// Repository is the local-store adapter. Every Upsert* keys on the entity's
// natural key and is idempotent: replaying the same remote data is a no-op
// update, never a duplicate row.
type Repository interface {
	UpsertCourse(ctx context.Context, course *model.Course) error
	ListCourseIDs(ctx context.Context) ([]string, error)

	UpsertUser(ctx context.Context, user *model.User) error
	UpsertRosterMembership(ctx context.Context, m *model.RosterMembership) error
	UserEmailsByExternalID(ctx context.Context) (map[string]string, error)

	UpsertCourseWork(ctx context.Context, work *model.CourseWork) error
	UpsertSubmission(ctx context.Context, sub *model.Submission) error

	CreateSyncLog(ctx context.Context, log *model.SyncLog) error
	UpdateSyncLog(ctx context.Context, log *model.SyncLog) error
	GetSyncLog(ctx context.Context, syncID string) (*model.SyncLog, error)
	ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error)

	CountUsersByRole(ctx context.Context, role model.Role) (int, error)
	CountMembershipsByRole(ctx context.Context, role model.Role) (int, error)
	CountSubmissions(ctx context.Context) (int, error)
	CountSubmissionsByState(ctx context.Context, state model.SubmissionState) (int, error)
	UpsertAnalytics(ctx context.Context, a *model.Analytics) error

	SchoolRollups(ctx context.Context) ([]model.School, error)
	UpsertSchool(ctx context.Context, s *model.School) error

	CreateUploadFile(ctx context.Context, file *model.UploadFile) (int64, error)
	GetUploadFile(ctx context.Context, fileID int64) (*model.UploadFile, error)
	UpdateUploadFileStatus(ctx context.Context, fileID int64, status model.FileStatus, errorMessage *string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UpsertCourse(ctx context.Context, course *model.Course) error {
	query := `INSERT INTO courses
		(course_id, name, section, description, description_heading, room,
		 owner_id, enrollment_code, course_state, remote_created_at, remote_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		 name = VALUES(name), section = VALUES(section),
		 description = VALUES(description), description_heading = VALUES(description_heading),
		 room = VALUES(room), owner_id = VALUES(owner_id),
		 enrollment_code = VALUES(enrollment_code), course_state = VALUES(course_state),
		 remote_created_at = VALUES(remote_created_at), remote_updated_at = VALUES(remote_updated_at),
		 updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		course.CourseID, course.Name, course.Section, course.Description,
		course.DescriptionHeading, course.Room, course.OwnerID,
		course.EnrollmentCode, course.CourseState,
		nullableTime(course.RemoteCreatedAt), nullableTime(course.RemoteUpdatedAt))
	return err
}

func (r *repository) ListCourseIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT course_id FROM courses ORDER BY course_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) UpsertUser(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users
		(email, external_id, given_name, family_name, full_name, photo_url, role,
		 gender, district, grade, school_name, age)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		 external_id = VALUES(external_id), given_name = VALUES(given_name),
		 family_name = VALUES(family_name), full_name = VALUES(full_name),
		 photo_url = VALUES(photo_url), role = VALUES(role),
		 gender = VALUES(gender), district = VALUES(district),
		 grade = VALUES(grade), school_name = VALUES(school_name),
		 age = VALUES(age), updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		user.Email, user.ExternalID, user.GivenName, user.FamilyName,
		user.FullName, user.PhotoURL, user.Role,
		user.Gender, user.District, user.Grade, user.SchoolName, user.Age)
	return err
}

func (r *repository) UpsertRosterMembership(ctx context.Context, m *model.RosterMembership) error {
	query := `INSERT INTO roster_memberships (course_id, user_email, role)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query, m.CourseID, m.UserEmail, m.Role)
	return err
}

func (r *repository) UserEmailsByExternalID(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT external_id, email FROM users WHERE external_id <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make(map[string]string)
	for rows.Next() {
		var id, email string
		if err := rows.Scan(&id, &email); err != nil {
			return nil, err
		}
		emails[id] = email
	}
	return emails, rows.Err()
}

func (r *repository) UpsertCourseWork(ctx context.Context, work *model.CourseWork) error {
	query := `INSERT INTO coursework
		(course_work_id, course_id, title, description, due_date, state,
		 max_points, materials, remote_created_at, remote_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		 course_id = VALUES(course_id), title = VALUES(title),
		 description = VALUES(description), due_date = VALUES(due_date),
		 state = VALUES(state), max_points = VALUES(max_points),
		 materials = VALUES(materials),
		 remote_created_at = VALUES(remote_created_at),
		 remote_updated_at = VALUES(remote_updated_at), updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		work.CourseWorkID, work.CourseID, work.Title, work.Description,
		nullableTime(work.DueDate), work.State, work.MaxPoints, work.Materials,
		nullableTime(work.RemoteCreatedAt), nullableTime(work.RemoteUpdatedAt))
	return err
}

func (r *repository) UpsertSubmission(ctx context.Context, sub *model.Submission) error {
	query := `INSERT INTO submissions
		(submission_id, course_id, course_work_id, user_id, user_email, state,
		 late, assigned_grade, remote_created_at, remote_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		 course_id = VALUES(course_id), course_work_id = VALUES(course_work_id),
		 user_id = VALUES(user_id), user_email = VALUES(user_email),
		 state = VALUES(state), late = VALUES(late),
		 assigned_grade = VALUES(assigned_grade),
		 remote_created_at = VALUES(remote_created_at),
		 remote_updated_at = VALUES(remote_updated_at), updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		sub.SubmissionID, sub.CourseID, sub.CourseWorkID, sub.UserID,
		sub.UserEmail, sub.State, sub.Late, sub.AssignedGrade,
		nullableTime(sub.RemoteCreatedAt), nullableTime(sub.RemoteUpdatedAt))
	return err
}

func (r *repository) CreateSyncLog(ctx context.Context, log *model.SyncLog) error {
	query := `INSERT INTO sync_logs
		(sync_id, initiator_email, initiator_role, scope, status, started_at,
		 records_processed, records_synced, records_failed, metadata)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, 0, '')
		ON DUPLICATE KEY UPDATE sync_id = sync_id`

	_, err := r.db.ExecContext(ctx, query,
		log.SyncID, log.InitiatorEmail, log.InitiatorRole, log.Scope,
		log.Status, log.StartedAt)
	return err
}

func (r *repository) UpdateSyncLog(ctx context.Context, log *model.SyncLog) error {
	query := `UPDATE sync_logs SET
		 status = ?, finished_at = ?, duration_ms = ?,
		 records_processed = ?, records_synced = ?, records_failed = ?,
		 metadata = ?, error_message = ?
		WHERE sync_id = ?`

	_, err := r.db.ExecContext(ctx, query,
		log.Status, log.FinishedAt, log.DurationMs,
		log.RecordsProcessed, log.RecordsSynced, log.RecordsFailed,
		log.Metadata, log.ErrorMessage, log.SyncID)
	return err
}

func (r *repository) GetSyncLog(ctx context.Context, syncID string) (*model.SyncLog, error) {
	query := `SELECT id, sync_id, initiator_email, initiator_role, scope, status,
		 started_at, finished_at, duration_ms,
		 records_processed, records_synced, records_failed, metadata, error_message
		FROM sync_logs WHERE sync_id = ?`

	var log model.SyncLog
	err := r.db.QueryRowContext(ctx, query, syncID).Scan(
		&log.ID, &log.SyncID, &log.InitiatorEmail, &log.InitiatorRole,
		&log.Scope, &log.Status, &log.StartedAt, &log.FinishedAt,
		&log.DurationMs, &log.RecordsProcessed, &log.RecordsSynced,
		&log.RecordsFailed, &log.Metadata, &log.ErrorMessage)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrSyncLogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *repository) ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	query := `SELECT id, sync_id, initiator_email, initiator_role, scope, status,
		 started_at, finished_at, duration_ms,
		 records_processed, records_synced, records_failed, metadata, error_message
		FROM sync_logs ORDER BY started_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.SyncLog
	for rows.Next() {
		var log model.SyncLog
		if err := rows.Scan(
			&log.ID, &log.SyncID, &log.InitiatorEmail, &log.InitiatorRole,
			&log.Scope, &log.Status, &log.StartedAt, &log.FinishedAt,
			&log.DurationMs, &log.RecordsProcessed, &log.RecordsSynced,
			&log.RecordsFailed, &log.Metadata, &log.ErrorMessage); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (r *repository) CountUsersByRole(ctx context.Context, role model.Role) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, role)
}

func (r *repository) CountMembershipsByRole(ctx context.Context, role model.Role) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM roster_memberships WHERE role = ?`, role)
}

func (r *repository) CountSubmissions(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM submissions`)
}

func (r *repository) CountSubmissionsByState(ctx context.Context, state model.SubmissionState) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM submissions WHERE state = ?`, state)
}

func (r *repository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repository) UpsertAnalytics(ctx context.Context, a *model.Analytics) error {
	query := `INSERT INTO analytics (metric_type, period, district, metric_value, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		 metric_value = VALUES(metric_value), metadata = VALUES(metadata),
		 updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		a.MetricType, a.Period, a.District, a.MetricValue, a.Metadata)
	return err
}

// SchoolRollups groups the mirrored users by district and joins active
// courses through their owner's directory profile. Users with no district
// attribute are left out of the rollup.
func (r *repository) SchoolRollups(ctx context.Context) ([]model.School, error) {
	query := `SELECT u.district,
		 SUM(CASE WHEN u.role = 'student' THEN 1 ELSE 0 END) AS students,
		 SUM(CASE WHEN u.role = 'teacher' THEN 1 ELSE 0 END) AS teachers,
		 (SELECT COUNT(*) FROM courses c
		   JOIN users o ON o.external_id = c.owner_id
		  WHERE o.district = u.district AND c.course_state = 'ACTIVE') AS active_courses
		FROM users u
		WHERE u.district <> ''
		GROUP BY u.district`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schools []model.School
	for rows.Next() {
		var s model.School
		if err := rows.Scan(&s.District, &s.StudentCount, &s.TeacherCount, &s.ActiveCourses); err != nil {
			return nil, err
		}
		s.SchoolID = model.SchoolID(s.District)
		schools = append(schools, s)
	}
	return schools, rows.Err()
}

func (r *repository) UpsertSchool(ctx context.Context, s *model.School) error {
	query := `INSERT INTO schools (school_id, district, student_count, teacher_count, active_courses)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		 district = VALUES(district), student_count = VALUES(student_count),
		 teacher_count = VALUES(teacher_count), active_courses = VALUES(active_courses),
		 updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		s.SchoolID, s.District, s.StudentCount, s.TeacherCount, s.ActiveCourses)
	return err
}

func (r *repository) CreateUploadFile(ctx context.Context, file *model.UploadFile) (int64, error) {
	query := `INSERT INTO upload_files (s3_path, uploaded_by, status) VALUES (?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, file.S3Path, file.UploadedBy, file.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *repository) GetUploadFile(ctx context.Context, fileID int64) (*model.UploadFile, error) {
	query := `SELECT id, s3_path, uploaded_by, status, error_message, created_at, updated_at
		FROM upload_files WHERE id = ?`

	var file model.UploadFile
	err := r.db.QueryRowContext(ctx, query, fileID).Scan(
		&file.ID, &file.S3Path, &file.UploadedBy, &file.Status,
		&file.ErrorMessage, &file.CreatedAt, &file.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *repository) UpdateUploadFileStatus(ctx context.Context, fileID int64, status model.FileStatus, errorMessage *string) error {
	query := `UPDATE upload_files SET status = ?, error_message = ?, updated_at = NOW() WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, status, errorMessage, fileID)
	return err
}

func nullableTime(t interface{ IsZero() bool }) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
