package grading

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gradespeed/gradespeed/core"
)

// Cached entities become eligible for refresh past this age.
const stalenessWindow = 2 * 24 * time.Hour

var nowFunc = time.Now // mockable

type Course struct {
	ID          string `json:"id"`
	OwnerID     string `json:"-"`
	Name        string `json:"name"`
	APICourseID string `json:"api_course_id"`
}

type SyncState string

const (
	// SyncStateUnsynced protects locally entered grades: remote grades may
	// not overwrite them until the teacher opts into syncing.
	SyncStateUnsynced SyncState = "U"
	SyncStateSynced   SyncState = "S"
)

// GradingSession is the local cache of one remote assignment and the parent
// of its submissions. Only one session can exist for a given assignment;
// users resume previous sessions, and submission data is refreshed when out
// of sync.
type GradingSession struct {
	ID             string    `json:"id"`
	Created        time.Time `json:"created"`
	CourseID       string    `json:"-"`
	AssignmentName string    `json:"assignment_name"`
	// UIURL is the link to this assignment in the third-party UI, stored
	// exactly as the remote API returns it.
	UIURL           string    `json:"ui_url"`
	APIAssignmentID string    `json:"api_assignment_id"`
	MaxGrade        int       `json:"max_grade"`
	SyncState       SyncState `json:"sync_state"`
}

func (s GradingSession) IsGraded() bool {
	return s.MaxGrade != 0
}

func (s GradingSession) IsSynced() bool {
	return s.SyncState == SyncStateSynced
}

// DetailViewURL transforms the stored overview link into the per-student
// grading view.
func (s GradingSession) DetailViewURL() string {
	return strings.Replace(s.UIURL, "details", "submissions/by-status/and-sort-first-name/all", 1)
}

// ReferenceTemplate is the assignment's reference document set, sorted and
// concatenated into a single string. The individual remote documents are
// irrelevant at this stage; it just gives us something to diff student
// submissions against. At most one live template exists per assignment and
// its content is replaced in place, never duplicated.
type ReferenceTemplate struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	LastUpdated time.Time `json:"last_updated"`
}

func (t ReferenceTemplate) NeedsRefresh() bool {
	return nowFunc().Sub(t.LastUpdated) > stalenessWindow
}

// Submission is the local cache of one student's remote submission.
type Submission struct {
	ID                  string `json:"id"`
	SessionID           string `json:"-"`
	ReferenceTemplateID string `json:"-"` // empty until first reconciliation

	APIStudentProfileID    string `json:"api_student_profile_id"`
	APIStudentSubmissionID string `json:"api_student_submission_id"`

	// Student fields are filled lazily: they require a separate detail
	// request, so skeleton records start out blank. The photo url is stored
	// raw (possibly protocol-relative); read it through ProfilePhotoURL.
	StudentName        string `json:"student_name"`
	RawProfilePhotoURL string `json:"-"`

	Grade   *int   `json:"grade"`
	Comment string `json:"comment"`

	// Content is the normalized concatenation of the student's attachments.
	// Empty means "not yet fetched"; no attachments yields NoAttachmentsFound.
	Content     string    `json:"content"`
	LastUpdated time.Time `json:"last_updated"`
}

func (s Submission) ProfilePhotoURL() string {
	return core.NormalizeProtocolURL(s.RawProfilePhotoURL)
}

func (s Submission) MarshalJSON() ([]byte, error) {
	type alias Submission
	return json.Marshal(struct {
		alias
		ProfilePhotoURL string `json:"profile_photo_url"`
	}{alias(s), s.ProfilePhotoURL()})
}

// NeedsRefresh reports whether a detail request must be made to (re)fill
// the lazily loaded fields or catch up with remote changes.
func (s Submission) NeedsRefresh() bool {
	isOld := nowFunc().Sub(s.LastUpdated) > stalenessWindow
	missingFields := s.ReferenceTemplateID == "" ||
		s.StudentName == "" ||
		s.RawProfilePhotoURL == "" ||
		s.Content == ""
	return isOld || missingFields
}
