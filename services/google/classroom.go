package googlesvc

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/api/classroom/v1"

	"github.com/gradespeed/gradespeed/core/grading"
)

type classroomService struct {
	creds CredentialProvider
}

var _ grading.ClassroomService = (*classroomService)(nil)

func NewClassroomService(creds CredentialProvider) *classroomService {
	return &classroomService{creds: creds}
}

// ListCourses lists the user's active courses. Courses without a teacher
// folder are filtered out: the user is not teaching those.
func (svc *classroomService) ListCourses(ctx context.Context, userID, pageToken string) (grading.CourseList, error) {
	cls, err := newClassroomService(ctx, svc.creds, userID)
	if err != nil {
		return grading.CourseList{}, err
	}

	res, err := cls.Courses.List().
		CourseStates("ACTIVE").
		PageSize(listPageSize).
		PageToken(pageToken).
		Context(ctx).
		Do()
	if err != nil {
		return grading.CourseList{}, errors.Wrap(err, "listing courses")
	}

	list := grading.CourseList{NextPageToken: res.NextPageToken}
	for _, c := range res.Courses {
		if c.TeacherFolder == nil {
			continue
		}
		list.Courses = append(list.Courses, grading.CourseResource{ID: c.Id, Name: c.Name})
	}
	return list, nil
}

func (svc *classroomService) GetCourse(ctx context.Context, userID, courseID string) (grading.CourseResource, error) {
	cls, err := newClassroomService(ctx, svc.creds, userID)
	if err != nil {
		return grading.CourseResource{}, err
	}

	c, err := cls.Courses.Get(courseID).Context(ctx).Do()
	if err != nil {
		return grading.CourseResource{}, errors.Wrap(err, "fetching course")
	}
	return grading.CourseResource{ID: c.Id, Name: c.Name}, nil
}

// ListAssignments lists the course's assignments in due-date order,
// filtered down to the ones we can actually grade: at least one drive file
// material shared as a student copy.
func (svc *classroomService) ListAssignments(ctx context.Context, userID, courseID, pageToken string) (grading.AssignmentList, error) {
	cls, err := newClassroomService(ctx, svc.creds, userID)
	if err != nil {
		return grading.AssignmentList{}, err
	}

	res, err := cls.Courses.CourseWork.List(courseID).
		PageSize(listPageSize).
		PageToken(pageToken).
		OrderBy("dueDate").
		Context(ctx).
		Do()
	if err != nil {
		return grading.AssignmentList{}, errors.Wrap(err, "listing assignments")
	}

	list := grading.AssignmentList{NextPageToken: res.NextPageToken}
	for _, cw := range res.CourseWork {
		if !isGradeable(cw) {
			continue
		}
		list.Assignments = append(list.Assignments, assignmentResource(cw))
	}
	return list, nil
}

func isGradeable(cw *classroom.CourseWork) bool {
	for _, m := range cw.Materials {
		if m.DriveFile != nil && m.DriveFile.ShareMode == "STUDENT_COPY" {
			return true
		}
	}
	return false
}

func assignmentResource(cw *classroom.CourseWork) grading.AssignmentResource {
	res := grading.AssignmentResource{
		ID:       cw.Id,
		Title:    cw.Title,
		UIURL:    cw.AlternateLink,
		MaxGrade: int(cw.MaxPoints),
	}
	for _, m := range cw.Materials {
		if m.DriveFile == nil || m.DriveFile.DriveFile == nil {
			continue
		}
		res.Materials = append(res.Materials, grading.Attachment{
			ID:   m.DriveFile.DriveFile.Id,
			Name: m.DriveFile.DriveFile.Title,
		})
	}
	return res
}

func (svc *classroomService) GetAssignment(ctx context.Context, userID, courseID, assignmentID string) (grading.AssignmentResource, error) {
	cls, err := newClassroomService(ctx, svc.creds, userID)
	if err != nil {
		return grading.AssignmentResource{}, err
	}

	cw, err := cls.Courses.CourseWork.Get(courseID, assignmentID).Context(ctx).Do()
	if err != nil {
		return grading.AssignmentResource{}, errors.Wrap(err, "fetching assignment")
	}
	return assignmentResource(cw), nil
}

func (svc *classroomService) ListSubmissions(ctx context.Context, userID, courseID, assignmentID, pageToken string) (grading.SubmissionList, error) {
	cls, err := newClassroomService(ctx, svc.creds, userID)
	if err != nil {
		return grading.SubmissionList{}, err
	}

	res, err := cls.Courses.CourseWork.StudentSubmissions.List(courseID, assignmentID).
		PageToken(pageToken).
		Context(ctx).
		Do()
	if err != nil {
		return grading.SubmissionList{}, errors.Wrap(err, "listing submissions")
	}

	list := grading.SubmissionList{NextPageToken: res.NextPageToken}
	for _, s := range res.StudentSubmissions {
		list.Submissions = append(list.Submissions, submissionResource(s))
	}
	return list, nil
}

func submissionResource(s *classroom.StudentSubmission) grading.SubmissionResource {
	res := grading.SubmissionResource{ID: s.Id, UserID: s.UserId}

	// the assigned grade wins over the draft grade
	if s.AssignedGrade != 0 {
		grade := int(s.AssignedGrade)
		res.Grade = &grade
	} else if s.DraftGrade != 0 {
		grade := int(s.DraftGrade)
		res.Grade = &grade
	}

	if s.AssignmentSubmission != nil {
		for _, att := range s.AssignmentSubmission.Attachments {
			if att.DriveFile == nil {
				continue
			}
			res.Attachments = append(res.Attachments, grading.Attachment{
				ID:   att.DriveFile.Id,
				Name: att.DriveFile.Title,
			})
		}
	}
	return res
}

func (svc *classroomService) GetSubmission(ctx context.Context, userID, courseID, assignmentID, submissionID string) (grading.SubmissionResource, error) {
	cls, err := newClassroomService(ctx, svc.creds, userID)
	if err != nil {
		return grading.SubmissionResource{}, err
	}

	s, err := cls.Courses.CourseWork.StudentSubmissions.Get(courseID, assignmentID, submissionID).Context(ctx).Do()
	if err != nil {
		return grading.SubmissionResource{}, errors.Wrap(err, "fetching submission")
	}
	return submissionResource(s), nil
}

func (svc *classroomService) GetStudent(ctx context.Context, userID, courseID, studentID string) (grading.StudentResource, error) {
	cls, err := newClassroomService(ctx, svc.creds, userID)
	if err != nil {
		return grading.StudentResource{}, err
	}

	s, err := cls.Courses.Students.Get(courseID, studentID).Context(ctx).Do()
	if err != nil {
		return grading.StudentResource{}, errors.Wrap(err, "fetching student")
	}

	res := grading.StudentResource{ID: studentID}
	if s.Profile != nil {
		res.PhotoURL = s.Profile.PhotoUrl
		if s.Profile.Name != nil {
			res.Name = s.Profile.Name.FullName
		}
	}
	return res, nil
}
