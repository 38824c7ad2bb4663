package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/gradespeed/gradespeed/core/grading"
)

type courseRow struct {
	ID          string `db:"id"`
	OwnerID     string `db:"owner_id"`
	Name        string `db:"name"`
	APICourseID string `db:"api_course_id"`
}

func (row courseRow) course() grading.Course {
	return grading.Course(row)
}

type sessionRow struct {
	ID              string    `db:"id"`
	Created         time.Time `db:"created"`
	CourseID        string    `db:"course_id"`
	AssignmentName  string    `db:"assignment_name"`
	UIURL           string    `db:"ui_url"`
	APIAssignmentID string    `db:"api_assignment_id"`
	MaxGrade        int       `db:"max_grade"`
	SyncState       string    `db:"sync_state"`
}

func newSessionRow(s grading.GradingSession) sessionRow {
	return sessionRow{
		ID:              s.ID,
		Created:         s.Created,
		CourseID:        s.CourseID,
		AssignmentName:  s.AssignmentName,
		UIURL:           s.UIURL,
		APIAssignmentID: s.APIAssignmentID,
		MaxGrade:        s.MaxGrade,
		SyncState:       string(s.SyncState),
	}
}

func (row sessionRow) session() grading.GradingSession {
	return grading.GradingSession{
		ID:              row.ID,
		Created:         row.Created,
		CourseID:        row.CourseID,
		AssignmentName:  row.AssignmentName,
		UIURL:           row.UIURL,
		APIAssignmentID: row.APIAssignmentID,
		MaxGrade:        row.MaxGrade,
		SyncState:       grading.SyncState(row.SyncState),
	}
}

type templateRow struct {
	ID          string    `db:"id"`
	Content     string    `db:"content"`
	LastUpdated time.Time `db:"last_updated"`
}

func (row templateRow) template() grading.ReferenceTemplate {
	return grading.ReferenceTemplate(row)
}

type submissionRow struct {
	ID                     string      `db:"id"`
	SessionID              string      `db:"session_id"`
	ReferenceTemplateID    null.String `db:"reference_template_id"`
	APIStudentProfileID    string      `db:"api_student_profile_id"`
	APIStudentSubmissionID string      `db:"api_student_submission_id"`
	StudentName            string      `db:"student_name"`
	ProfilePhotoURL        string      `db:"profile_photo_url"`
	Grade                  null.Int    `db:"grade"`
	Comment                string      `db:"comment"`
	Content                string      `db:"content"`
	LastUpdated            time.Time   `db:"last_updated"`
}

func newSubmissionRow(sub grading.Submission) submissionRow {
	var grade null.Int
	if sub.Grade != nil {
		grade = null.IntFrom(*sub.Grade)
	}
	return submissionRow{
		ID:                     sub.ID,
		SessionID:              sub.SessionID,
		ReferenceTemplateID:    null.NewString(sub.ReferenceTemplateID, sub.ReferenceTemplateID != ""),
		APIStudentProfileID:    sub.APIStudentProfileID,
		APIStudentSubmissionID: sub.APIStudentSubmissionID,
		StudentName:            sub.StudentName,
		ProfilePhotoURL:        sub.RawProfilePhotoURL,
		Grade:                  grade,
		Comment:                sub.Comment,
		Content:                sub.Content,
		LastUpdated:            sub.LastUpdated,
	}
}

func (row submissionRow) submission() grading.Submission {
	var grade *int
	if row.Grade.Valid {
		g := row.Grade.Int
		grade = &g
	}
	return grading.Submission{
		ID:                     row.ID,
		SessionID:              row.SessionID,
		ReferenceTemplateID:    row.ReferenceTemplateID.String,
		APIStudentProfileID:    row.APIStudentProfileID,
		APIStudentSubmissionID: row.APIStudentSubmissionID,
		StudentName:            row.StudentName,
		RawProfilePhotoURL:     row.ProfilePhotoURL,
		Grade:                  grade,
		Comment:                row.Comment,
		Content:                row.Content,
		LastUpdated:            row.LastUpdated,
	}
}

type gradingRepository struct {
	db *sqlx.DB
}

var _ grading.Repository = (*gradingRepository)(nil)

func NewGradingRepository(db *sql.DB) *gradingRepository {
	return &gradingRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo gradingRepository) CreateCourse(ctx context.Context, course grading.Course) (grading.Course, error) {
	q := `
INSERT INTO course (id, owner_id, name, api_course_id)
VALUES (:id, :owner_id, :name, :api_course_id)`
	if _, err := repo.db.NamedExecContext(ctx, q, courseRow(course)); err != nil {
		return grading.Course{}, errors.Wrap(err, "creating course")
	}
	return course, nil
}

func (repo gradingRepository) GetCourseByID(ctx context.Context, id string) (grading.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.Course{}, grading.ErrNotFound
		}
		return grading.Course{}, errors.Wrap(err, "getting course")
	}
	return row.course(), nil
}

func (repo gradingRepository) GetCourseByAPIID(ctx context.Context, ownerID, apiCourseID string) (grading.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE owner_id = $1 AND api_course_id = $2`, ownerID, apiCourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.Course{}, grading.ErrNotFound
		}
		return grading.Course{}, errors.Wrap(err, "getting course")
	}
	return row.course(), nil
}

func (repo gradingRepository) CreateGradingSession(ctx context.Context, session grading.GradingSession) (grading.GradingSession, error) {
	q := `
INSERT INTO grading_session (id, created, course_id, assignment_name, ui_url, api_assignment_id, max_grade, sync_state)
VALUES (:id, :created, :course_id, :assignment_name, :ui_url, :api_assignment_id, :max_grade, :sync_state)`
	if _, err := repo.db.NamedExecContext(ctx, q, newSessionRow(session)); err != nil {
		return grading.GradingSession{}, errors.Wrap(err, "creating session")
	}
	return session, nil
}

func (repo gradingRepository) GetGradingSessionByID(ctx context.Context, id string) (grading.GradingSession, error) {
	var row sessionRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM grading_session WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.GradingSession{}, grading.ErrNotFound
		}
		return grading.GradingSession{}, errors.Wrap(err, "getting session")
	}
	return row.session(), nil
}

func (repo gradingRepository) GetGradingSessionByAssignmentID(ctx context.Context, apiAssignmentID string) (grading.GradingSession, error) {
	var row sessionRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM grading_session WHERE api_assignment_id = $1`, apiAssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.GradingSession{}, grading.ErrNotFound
		}
		return grading.GradingSession{}, errors.Wrap(err, "getting session")
	}
	return row.session(), nil
}

func (repo gradingRepository) UpdateGradingSession(ctx context.Context, session grading.GradingSession) (grading.GradingSession, error) {
	q := `
UPDATE grading_session
SET assignment_name = :assignment_name,
    ui_url          = :ui_url,
    max_grade       = :max_grade,
    sync_state      = :sync_state
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newSessionRow(session))
	if err != nil {
		return grading.GradingSession{}, errors.Wrap(err, "updating session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grading.GradingSession{}, grading.ErrNotFound
	}
	return session, nil
}

func (repo gradingRepository) QueryCourseSessions(ctx context.Context, courseID string) ([]grading.GradingSession, error) {
	var rows []sessionRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM grading_session WHERE course_id = $1 ORDER BY created DESC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make([]grading.GradingSession, len(rows))
	for i, row := range rows {
		sessions[i] = row.session()
	}
	return sessions, nil
}

func (repo gradingRepository) CreateReferenceTemplate(ctx context.Context, tmpl grading.ReferenceTemplate) (grading.ReferenceTemplate, error) {
	q := `
INSERT INTO reference_template (id, content, last_updated)
VALUES (:id, :content, :last_updated)`
	if _, err := repo.db.NamedExecContext(ctx, q, templateRow(tmpl)); err != nil {
		return grading.ReferenceTemplate{}, errors.Wrap(err, "creating template")
	}
	return tmpl, nil
}

func (repo gradingRepository) GetReferenceTemplateByID(ctx context.Context, id string) (grading.ReferenceTemplate, error) {
	var row templateRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM reference_template WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.ReferenceTemplate{}, grading.ErrNotFound
		}
		return grading.ReferenceTemplate{}, errors.Wrap(err, "getting template")
	}
	return row.template(), nil
}

func (repo gradingRepository) SaveReferenceTemplateContent(ctx context.Context, tmpl grading.ReferenceTemplate) (grading.ReferenceTemplate, error) {
	q := `UPDATE reference_template SET content = :content, last_updated = :last_updated WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, templateRow(tmpl))
	if err != nil {
		return grading.ReferenceTemplate{}, errors.Wrap(err, "saving template")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grading.ReferenceTemplate{}, grading.ErrNotFound
	}
	return tmpl, nil
}

func (repo gradingRepository) GetSubmissionByID(ctx context.Context, id string) (grading.Submission, error) {
	var row submissionRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM submission WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.Submission{}, grading.ErrNotFound
		}
		return grading.Submission{}, errors.Wrap(err, "getting submission")
	}
	return row.submission(), nil
}

func (repo gradingRepository) QuerySessionSubmissions(ctx context.Context, sessionID string) ([]grading.Submission, error) {
	var rows []submissionRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM submission WHERE session_id = $1 ORDER BY student_name, id`, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]grading.Submission, len(rows))
	for i, row := range rows {
		subs[i] = row.submission()
	}
	return subs, nil
}

func (repo gradingRepository) UpdateSubmission(ctx context.Context, sub grading.Submission) (grading.Submission, error) {
	q := `
UPDATE submission
SET reference_template_id  = :reference_template_id,
    api_student_profile_id = :api_student_profile_id,
    student_name           = :student_name,
    profile_photo_url      = :profile_photo_url,
    grade                  = :grade,
    comment                = :comment,
    content                = :content,
    last_updated           = :last_updated
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newSubmissionRow(sub))
	if err != nil {
		return grading.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grading.Submission{}, grading.ErrNotFound
	}
	return sub, nil
}

func (repo gradingRepository) SetSubmissionTemplate(ctx context.Context, subID, templateID string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE submission SET reference_template_id = $1 WHERE id = $2`, templateID, subID)
	if err != nil {
		return errors.Wrap(err, "linking template")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grading.ErrNotFound
	}
	return nil
}

func (repo gradingRepository) BulkCreateSubmissions(ctx context.Context, subs []grading.Submission) error {
	if len(subs) == 0 {
		return nil
	}
	rows := make([]submissionRow, len(subs))
	for i, sub := range subs {
		rows[i] = newSubmissionRow(sub)
	}
	q := `
INSERT INTO submission (id, session_id, reference_template_id, api_student_profile_id, api_student_submission_id,
                        student_name, profile_photo_url, grade, comment, content, last_updated)
VALUES (:id, :session_id, :reference_template_id, :api_student_profile_id, :api_student_submission_id,
        :student_name, :profile_photo_url, :grade, :comment, :content, :last_updated)`
	if _, err := repo.db.NamedExecContext(ctx, q, rows); err != nil {
		return errors.Wrap(err, "creating submissions")
	}
	return nil
}

func (repo gradingRepository) BulkUpdateSubmissions(ctx context.Context, subs []grading.Submission) error {
	if len(subs) == 0 {
		return nil
	}
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	q := `
UPDATE submission
SET reference_template_id  = :reference_template_id,
    api_student_profile_id = :api_student_profile_id,
    student_name           = :student_name,
    profile_photo_url      = :profile_photo_url,
    grade                  = :grade,
    comment                = :comment,
    content                = :content,
    last_updated           = :last_updated
WHERE id = :id`
	for _, sub := range subs {
		if _, err = tx.NamedExecContext(ctx, q, newSubmissionRow(sub)); err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "updating submissions")
		}
	}
	return errors.Wrap(tx.Commit(), "updating submissions")
}

func (repo gradingRepository) DeleteSessionSubmissions(ctx context.Context, sessionID string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM submission WHERE session_id = $1`, sessionID); err != nil {
		return errors.Wrap(err, "deleting submissions")
	}
	return nil
}
