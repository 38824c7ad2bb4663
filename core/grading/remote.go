package grading

import (
	"context"
	"fmt"
)

// Typed views of the remote coursework API resources. Remote JSON is parsed
// into these at the client boundary so the reconciliation core never touches
// untyped maps.
type (
	// Attachment identifies one remotely hosted document to export.
	// Ephemeral; never persisted.
	Attachment struct {
		ID   string
		Name string
	}

	CourseResource struct {
		ID   string
		Name string
	}

	CourseList struct {
		NextPageToken string
		Courses       []CourseResource
	}

	AssignmentResource struct {
		ID       string
		Title    string
		UIURL    string
		MaxGrade int
		// Materials are the reference ("teacher") documents; entries with no
		// resolvable document id are kept and filtered by the caller.
		Materials []Attachment
	}

	AssignmentList struct {
		NextPageToken string
		Assignments   []AssignmentResource
	}

	SubmissionResource struct {
		ID     string
		UserID string
		// Grade is the assigned grade, falling back to the draft grade.
		Grade       *int
		Attachments []Attachment
	}

	SubmissionList struct {
		NextPageToken string
		Submissions   []SubmissionResource
	}

	StudentResource struct {
		ID       string
		Name     string
		PhotoURL string
	}
)

type (
	// ClassroomService is the remote coursework API boundary. All calls act
	// on behalf of the given user's delegated credential; a missing
	// credential surfaces as auth.ErrCredentialMissing.
	ClassroomService interface {
		ListCourses(ctx context.Context, userID, pageToken string) (CourseList, error)
		GetCourse(ctx context.Context, userID, courseID string) (CourseResource, error)
		ListAssignments(ctx context.Context, userID, courseID, pageToken string) (AssignmentList, error)
		GetAssignment(ctx context.Context, userID, courseID, assignmentID string) (AssignmentResource, error)
		ListSubmissions(ctx context.Context, userID, courseID, assignmentID, pageToken string) (SubmissionList, error)
		GetSubmission(ctx context.Context, userID, courseID, assignmentID, submissionID string) (SubmissionResource, error)
		GetStudent(ctx context.Context, userID, courseID, studentID string) (StudentResource, error)
	}

	// DriveService exports remotely hosted documents as plain text.
	DriveService interface {
		ExportPlainText(ctx context.Context, userID, fileID string) ([]byte, error)
	}
)

// ExportError is returned by DriveService when a document export fails.
// Unsupported marks documents that exist but are not exportable to plain
// text (images, uploads, ...): an expected condition handled with a
// placeholder, as opposed to auth/quota failures.
type ExportError struct {
	FileID      string
	Unsupported bool
	Err         error
}

func (e *ExportError) Error() string {
	if e.Unsupported {
		return fmt.Sprintf("export %s: not an editable document", e.FileID)
	}
	return fmt.Sprintf("export %s: %v", e.FileID, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
