package dummydb

import (
	"context"
	"sort"

	"github.com/gradespeed/gradespeed/core/grading"
)

type gradingRepository struct {
	db *DB
}

var _ grading.Repository = (*gradingRepository)(nil) // interface compliance check

func NewGradingRepository(db *DB) grading.Repository {
	return &gradingRepository{db: db}
}

func (repo *gradingRepository) CreateCourse(ctx context.Context, course grading.Course) (grading.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.courses[course.ID] = &course
	return course, nil
}

func (repo *gradingRepository) GetCourseByID(ctx context.Context, id string) (grading.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if course, ok := repo.db.courses[id]; ok {
		return *course, nil
	}
	return grading.Course{}, grading.ErrNotFound
}

func (repo *gradingRepository) GetCourseByAPIID(ctx context.Context, ownerID, apiCourseID string) (grading.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, course := range repo.db.courses {
		if course.OwnerID == ownerID && course.APICourseID == apiCourseID {
			return *course, nil
		}
	}
	return grading.Course{}, grading.ErrNotFound
}

func (repo *gradingRepository) CreateGradingSession(ctx context.Context, session grading.GradingSession) (grading.GradingSession, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.sessions[session.ID] = &session
	return session, nil
}

func (repo *gradingRepository) GetGradingSessionByID(ctx context.Context, id string) (grading.GradingSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if session, ok := repo.db.sessions[id]; ok {
		return *session, nil
	}
	return grading.GradingSession{}, grading.ErrNotFound
}

func (repo *gradingRepository) GetGradingSessionByAssignmentID(ctx context.Context, apiAssignmentID string) (grading.GradingSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, session := range repo.db.sessions {
		if session.APIAssignmentID == apiAssignmentID {
			return *session, nil
		}
	}
	return grading.GradingSession{}, grading.ErrNotFound
}

func (repo *gradingRepository) UpdateGradingSession(ctx context.Context, session grading.GradingSession) (grading.GradingSession, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[session.ID]; !ok {
		return grading.GradingSession{}, grading.ErrNotFound
	}
	repo.db.sessions[session.ID] = &session
	return session, nil
}

func (repo *gradingRepository) QueryCourseSessions(ctx context.Context, courseID string) ([]grading.GradingSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var sessions []grading.GradingSession
	for _, session := range repo.db.sessions {
		if session.CourseID == courseID {
			sessions = append(sessions, *session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Created.After(sessions[j].Created) })
	return sessions, nil
}

func (repo *gradingRepository) CreateReferenceTemplate(ctx context.Context, tmpl grading.ReferenceTemplate) (grading.ReferenceTemplate, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.templates[tmpl.ID] = &tmpl
	return tmpl, nil
}

func (repo *gradingRepository) GetReferenceTemplateByID(ctx context.Context, id string) (grading.ReferenceTemplate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tmpl, ok := repo.db.templates[id]; ok {
		return *tmpl, nil
	}
	return grading.ReferenceTemplate{}, grading.ErrNotFound
}

func (repo *gradingRepository) SaveReferenceTemplateContent(ctx context.Context, tmpl grading.ReferenceTemplate) (grading.ReferenceTemplate, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.templates[tmpl.ID]; !ok {
		return grading.ReferenceTemplate{}, grading.ErrNotFound
	}
	repo.db.templates[tmpl.ID] = &tmpl
	return tmpl, nil
}

func (repo *gradingRepository) GetSubmissionByID(ctx context.Context, id string) (grading.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.submissions[id]; ok {
		return *sub, nil
	}
	return grading.Submission{}, grading.ErrNotFound
}

func (repo *gradingRepository) QuerySessionSubmissions(ctx context.Context, sessionID string) ([]grading.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var subs []grading.Submission
	for _, sub := range repo.db.submissions {
		if sub.SessionID == sessionID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].StudentName != subs[j].StudentName {
			return subs[i].StudentName < subs[j].StudentName
		}
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (repo *gradingRepository) UpdateSubmission(ctx context.Context, sub grading.Submission) (grading.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.submissions[sub.ID]; !ok {
		return grading.Submission{}, grading.ErrNotFound
	}
	repo.db.submissions[sub.ID] = &sub
	return sub, nil
}

func (repo *gradingRepository) SetSubmissionTemplate(ctx context.Context, subID, templateID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub, ok := repo.db.submissions[subID]
	if !ok {
		return grading.ErrNotFound
	}
	sub.ReferenceTemplateID = templateID
	return nil
}

func (repo *gradingRepository) BulkCreateSubmissions(ctx context.Context, subs []grading.Submission) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, sub := range subs {
		sub := sub
		repo.db.submissions[sub.ID] = &sub
	}
	return nil
}

func (repo *gradingRepository) BulkUpdateSubmissions(ctx context.Context, subs []grading.Submission) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, sub := range subs {
		if _, ok := repo.db.submissions[sub.ID]; !ok {
			return grading.ErrNotFound
		}
	}
	for _, sub := range subs {
		sub := sub
		repo.db.submissions[sub.ID] = &sub
	}
	return nil
}

func (repo *gradingRepository) DeleteSessionSubmissions(ctx context.Context, sessionID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, sub := range repo.db.submissions {
		if sub.SessionID == sessionID {
			delete(repo.db.submissions, id)
		}
	}
	return nil
}
