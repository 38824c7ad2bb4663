package grading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/gradespeed/gradespeed/core"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrNoReferenceAttachments means the assignment has no exportable
	// reference documents: it cannot be graded through this tool, and the
	// user must be told so rather than silently given something else.
	ErrNoReferenceAttachments = errors.New("assignment does not contain any reference attachments")

	// ErrOrphanSubmission means a remote submission has no matching local
	// record during an update-in-place pass. Dropping it silently would lose
	// grading data, so the operation is rejected outright.
	ErrOrphanSubmission = errors.New("remote submission has no local record")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, course Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		GetCourseByAPIID(ctx context.Context, ownerID, apiCourseID string) (Course, error)

		CreateGradingSession(ctx context.Context, session GradingSession) (GradingSession, error)
		GetGradingSessionByID(ctx context.Context, id string) (GradingSession, error)
		GetGradingSessionByAssignmentID(ctx context.Context, apiAssignmentID string) (GradingSession, error)
		UpdateGradingSession(ctx context.Context, session GradingSession) (GradingSession, error)
		QueryCourseSessions(ctx context.Context, courseID string) ([]GradingSession, error)

		CreateReferenceTemplate(ctx context.Context, tmpl ReferenceTemplate) (ReferenceTemplate, error)
		GetReferenceTemplateByID(ctx context.Context, id string) (ReferenceTemplate, error)
		// SaveReferenceTemplateContent replaces the template content in
		// place and bumps LastUpdated.
		SaveReferenceTemplateContent(ctx context.Context, tmpl ReferenceTemplate) (ReferenceTemplate, error)

		GetSubmissionByID(ctx context.Context, id string) (Submission, error)
		QuerySessionSubmissions(ctx context.Context, sessionID string) ([]Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
		// SetSubmissionTemplate persists only the template link, so sibling
		// reconciliations observe it as soon as the template exists.
		SetSubmissionTemplate(ctx context.Context, subID, templateID string) error
		BulkCreateSubmissions(ctx context.Context, subs []Submission) error
		BulkUpdateSubmissions(ctx context.Context, subs []Submission) error
		DeleteSessionSubmissions(ctx context.Context, sessionID string) error
	}

	Service struct {
		repo      Repository
		classroom ClassroomService
		drive     DriveService
		logger    core.Logger
	}
)

func NewService(repo Repository, classroom ClassroomService, drive DriveService, logger core.Logger) *Service {
	return &Service{
		repo:      repo,
		classroom: classroom,
		drive:     drive,
		logger:    logger,
	}
}

// concatenateAttachments exports each attachment as plain text and collects
// them, in input order, into a ConcatOutput. Per-document export failures
// never abort the batch: the document is represented by a placeholder line
// instead. All results are batched in memory; nothing is persisted here, so
// an aborted run cannot leave partial content behind.
func (svc *Service) concatenateAttachments(ctx context.Context, ownerID string, attachments []Attachment) ConcatOutput {
	output := make([]StringifiedAttachment, 0, len(attachments))

	for _, att := range attachments {
		header := newHeader(att.Name)

		data, err := svc.drive.ExportPlainText(ctx, ownerID, att.ID)
		if err != nil {
			var expErr *ExportError
			if errors.As(err, &expErr) && expErr.Unsupported {
				svc.logger.Debug("file was not converted because it is not an editable document (doc, slides, ...)")
			} else {
				svc.logger.Error("unexpected condition prevented file export", err)
			}
			output = append(output, StringifiedAttachment{
				Header:  header,
				Content: []string{importFailedLine(att.Name)},
			})
			continue
		}

		content := make([]string, 0)
		for _, l := range strings.Split(string(data), "\n") {
			if l != "" {
				content = append(content, strings.TrimSpace(l))
			}
		}
		output = append(output, StringifiedAttachment{Header: header, Content: content})
	}

	return ConcatOutput{Data: output}
}

// EnsureReferenceFresh fetches the assignment's reference attachments and
// creates or refreshes the shared template. The second return reports
// whether a new record was created, so the caller can link it to the owning
// submission exactly once. Existing content is only written when it actually
// changed, keeping write amplification down when sibling submissions race
// through here.
func (svc *Service) EnsureReferenceFresh(
	ctx context.Context,
	ownerID, courseID, assignmentID string,
	existing *ReferenceTemplate,
) (ReferenceTemplate, bool, error) {
	assignment, err := svc.classroom.GetAssignment(ctx, ownerID, courseID, assignmentID)
	if err != nil {
		return ReferenceTemplate{}, false, errors.Wrap(err, "fetching assignment detail")
	}

	attachments := make([]Attachment, 0, len(assignment.Materials))
	for _, m := range assignment.Materials {
		if m.ID != "" {
			attachments = append(attachments, m)
		}
	}
	if len(attachments) == 0 {
		return ReferenceTemplate{}, false, ErrNoReferenceAttachments
	}

	content := svc.concatenateAttachments(ctx, ownerID, attachments).CombinedString()

	if existing != nil {
		tmpl := *existing
		if content != tmpl.Content {
			tmpl.Content = content
			tmpl.LastUpdated = nowFunc().UTC()
			if tmpl, err = svc.repo.SaveReferenceTemplateContent(ctx, tmpl); err != nil {
				return ReferenceTemplate{}, false, errors.Wrap(err, "saving reference template")
			}
		}
		return tmpl, false, nil
	}

	tmpl := ReferenceTemplate{
		ID:          uuid.New().String(),
		Content:     content,
		LastUpdated: nowFunc().UTC(),
	}
	if tmpl, err = svc.repo.CreateReferenceTemplate(ctx, tmpl); err != nil {
		return ReferenceTemplate{}, false, errors.Wrap(err, "creating reference template")
	}
	return tmpl, true, nil
}

// Reconcile refreshes the submission's reference template and content from
// the remote API. By default only stale or incomplete records trigger remote
// calls; forceUpdate bypasses the staleness checks. The template phase
// strictly precedes the content phase: reordering the student's attachments
// depends on the template content already being combined.
func (svc *Service) Reconcile(ctx context.Context, sub Submission, forceUpdate bool) (Submission, error) {
	session, err := svc.repo.GetGradingSessionByID(ctx, sub.SessionID)
	if err != nil {
		return sub, errors.Wrap(err, "loading grading session")
	}
	course, err := svc.repo.GetCourseByID(ctx, session.CourseID)
	if err != nil {
		return sub, errors.Wrap(err, "loading course")
	}

	var tmpl ReferenceTemplate
	var existing *ReferenceTemplate
	if sub.ReferenceTemplateID != "" {
		if tmpl, err = svc.repo.GetReferenceTemplateByID(ctx, sub.ReferenceTemplateID); err != nil {
			return sub, errors.Wrap(err, "loading reference template")
		}
		existing = &tmpl
	}

	if forceUpdate || existing == nil || tmpl.NeedsRefresh() {
		var wasCreated bool
		tmpl, wasCreated, err = svc.EnsureReferenceFresh(ctx, course.OwnerID, course.APICourseID, session.APIAssignmentID, existing)
		if err != nil {
			return sub, err
		}
		if wasCreated {
			sub.ReferenceTemplateID = tmpl.ID
			if err = svc.repo.SetSubmissionTemplate(ctx, sub.ID, tmpl.ID); err != nil {
				return sub, errors.Wrap(err, "linking reference template")
			}
		}
	}

	if forceUpdate || sub.NeedsRefresh() {
		if sub, err = svc.refreshContent(ctx, course, session, sub, tmpl); err != nil {
			return sub, err
		}
	}
	return sub, nil
}

func (svc *Service) refreshContent(
	ctx context.Context,
	course Course,
	session GradingSession,
	sub Submission,
	tmpl ReferenceTemplate,
) (Submission, error) {
	detail, err := svc.classroom.GetSubmission(ctx, course.OwnerID, course.APICourseID, session.APIAssignmentID, sub.APIStudentSubmissionID)
	if err != nil {
		return sub, errors.Wrap(err, "fetching submission detail")
	}
	student, err := svc.classroom.GetStudent(ctx, course.OwnerID, course.APICourseID, detail.UserID)
	if err != nil {
		return sub, errors.Wrap(err, "fetching student profile")
	}

	before := sub
	sub.APIStudentProfileID = student.ID
	sub.StudentName = student.Name
	sub.RawProfilePhotoURL = student.PhotoURL
	// only let remote grades overwrite ours once the whole session is
	// marked as synced
	if session.IsSynced() {
		sub.Grade = detail.Grade
	}

	order := ParseOrder(tmpl.Content)
	ordered, unmatched := ReorderAttachments(order, detail.Attachments)
	for _, att := range unmatched {
		svc.logger.Debug("attachment matches no reference document; excluded from content: " + att.Name)
	}

	sub.Content = svc.concatenateAttachments(ctx, course.OwnerID, ordered).CombinedString()

	// a submission whose student has no attachments still needs its lazily
	// fetched fields stored, or it would stay stale forever
	if submissionChanged(before, sub) {
		sub.LastUpdated = nowFunc().UTC()
		if sub, err = svc.repo.UpdateSubmission(ctx, sub); err != nil {
			return sub, errors.Wrap(err, "saving submission")
		}
	}
	return sub, nil
}

func submissionChanged(before, after Submission) bool {
	return after.Content != before.Content ||
		after.StudentName != before.StudentName ||
		after.RawProfilePhotoURL != before.RawProfilePhotoURL ||
		after.APIStudentProfileID != before.APIStudentProfileID ||
		!gradeEqual(after.Grade, before.Grade)
}

func gradeEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Diff renders a unified line diff of the reference template against the
// submission content. A submission that was never reconciled gets reconciled
// first, so this is always safe to call, at the cost of latency on first
// access. The diff itself never mutates stored state.
func (svc *Service) Diff(ctx context.Context, sub Submission) ([]string, error) {
	if sub.ReferenceTemplateID == "" {
		var err error
		if sub, err = svc.Reconcile(ctx, sub, false); err != nil {
			return nil, err
		}
	}

	if sub.Content == "" || sub.Content == NoAttachmentsFound {
		return []string{NoAttachmentsFound}, nil
	}

	tmpl, err := svc.repo.GetReferenceTemplateByID(ctx, sub.ReferenceTemplateID)
	if err != nil {
		return nil, errors.Wrap(err, "loading reference template")
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(tmpl.Content),
		B:        difflib.SplitLines(sub.Content),
		FromFile: "teacher template",
		ToFile:   "student submission",
		Context:  3,
	})
	if err != nil {
		return nil, errors.Wrap(err, "diffing")
	}
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n"), nil
}

// EnsureCourse returns the local course record for a remote course id,
// creating it from the remote resource on first use.
func (svc *Service) EnsureCourse(ctx context.Context, ownerID, apiCourseID string) (Course, error) {
	course, err := svc.repo.GetCourseByAPIID(ctx, ownerID, apiCourseID)
	if err == nil {
		return course, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Course{}, errors.Wrap(err, "loading course")
	}

	remote, err := svc.classroom.GetCourse(ctx, ownerID, apiCourseID)
	if err != nil {
		return Course{}, errors.Wrap(err, "fetching remote course")
	}

	return svc.repo.CreateCourse(ctx, Course{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        remote.Name,
		APICourseID: apiCourseID,
	})
}

// ImportSession creates (or resumes) the grading session for an assignment.
// On creation the remote submission list is imported as skeleton records:
// content and student profile info are left for lazy reconciliation. On
// resume with fullUpdate, existing records are refreshed in place so
// locally entered comments survive; a remote submission with no local
// record rejects the whole operation with ErrOrphanSubmission.
func (svc *Service) ImportSession(
	ctx context.Context,
	ownerID string,
	course Course,
	assignmentID string,
	fullUpdate bool,
) (GradingSession, bool, error) {
	detail, err := svc.classroom.GetAssignment(ctx, ownerID, course.APICourseID, assignmentID)
	if err != nil {
		return GradingSession{}, false, errors.Wrap(err, "fetching assignment detail")
	}

	var created bool
	session, err := svc.repo.GetGradingSessionByAssignmentID(ctx, assignmentID)
	switch errors.Cause(err) {
	case nil:
		if session.AssignmentName != detail.Title || session.UIURL != detail.UIURL || session.MaxGrade != detail.MaxGrade {
			session.AssignmentName = detail.Title
			session.UIURL = detail.UIURL
			session.MaxGrade = detail.MaxGrade
			if session, err = svc.repo.UpdateGradingSession(ctx, session); err != nil {
				return GradingSession{}, false, errors.Wrap(err, "updating grading session")
			}
		}
	case ErrNotFound:
		session = GradingSession{
			ID:              uuid.New().String(),
			Created:         nowFunc().UTC(),
			CourseID:        course.ID,
			AssignmentName:  detail.Title,
			UIURL:           detail.UIURL,
			APIAssignmentID: assignmentID,
			MaxGrade:        detail.MaxGrade,
			SyncState:       SyncStateUnsynced,
		}
		if session, err = svc.repo.CreateGradingSession(ctx, session); err != nil {
			return GradingSession{}, false, errors.Wrap(err, "creating grading session")
		}
		created = true
	default:
		return GradingSession{}, false, errors.Wrap(err, "loading grading session")
	}

	if created {
		if err = svc.importSubmissions(ctx, ownerID, course, session); err != nil {
			return session, created, err
		}
	} else if fullUpdate {
		if err = svc.refreshSubmissions(ctx, ownerID, course, session); err != nil {
			return session, created, err
		}
	}
	return session, created, nil
}

// listRemoteSubmissions walks the paginated remote submission list to the end.
func (svc *Service) listRemoteSubmissions(ctx context.Context, ownerID string, course Course, session GradingSession) ([]SubmissionResource, error) {
	remotes := make([]SubmissionResource, 0)
	pageToken := ""
	for {
		page, err := svc.classroom.ListSubmissions(ctx, ownerID, course.APICourseID, session.APIAssignmentID, pageToken)
		if err != nil {
			return nil, errors.Wrap(err, "listing remote submissions")
		}
		remotes = append(remotes, page.Submissions...)
		if page.NextPageToken == "" {
			return remotes, nil
		}
		pageToken = page.NextPageToken
	}
}

func (svc *Service) importSubmissions(ctx context.Context, ownerID string, course Course, session GradingSession) error {
	remotes, err := svc.listRemoteSubmissions(ctx, ownerID, course, session)
	if err != nil {
		return err
	}

	if err = svc.repo.DeleteSessionSubmissions(ctx, session.ID); err != nil {
		return errors.Wrap(err, "clearing session submissions")
	}

	subs := make([]Submission, 0, len(remotes))
	for _, remote := range remotes {
		subs = append(subs, Submission{
			ID:                     uuid.New().String(),
			SessionID:              session.ID,
			APIStudentProfileID:    remote.UserID,
			APIStudentSubmissionID: remote.ID,
			Grade:                  remote.Grade,
			Content:                NoAttachmentsFound,
			LastUpdated:            time.Time{}, // zero: never reconciled
		})
	}
	return errors.Wrap(svc.repo.BulkCreateSubmissions(ctx, subs), "bulk creating submissions")
}

func (svc *Service) refreshSubmissions(ctx context.Context, ownerID string, course Course, session GradingSession) error {
	remotes, err := svc.listRemoteSubmissions(ctx, ownerID, course, session)
	if err != nil {
		return err
	}
	locals, err := svc.repo.QuerySessionSubmissions(ctx, session.ID)
	if err != nil {
		return errors.Wrap(err, "querying session submissions")
	}

	bySubmissionID := make(map[string]Submission, len(locals))
	for _, sub := range locals {
		bySubmissionID[sub.APIStudentSubmissionID] = sub
	}

	updates := make([]Submission, 0, len(remotes))
	for _, remote := range remotes {
		local, ok := bySubmissionID[remote.ID]
		if !ok {
			return errors.Wrapf(ErrOrphanSubmission, "remote submission %s", remote.ID)
		}
		local.APIStudentProfileID = remote.UserID
		if session.IsSynced() {
			local.Grade = remote.Grade
		}
		updates = append(updates, local)
	}
	return errors.Wrap(svc.repo.BulkUpdateSubmissions(ctx, updates), "bulk updating submissions")
}

func (svc *Service) ListRemoteCourses(ctx context.Context, ownerID, pageToken string) (CourseList, error) {
	return svc.classroom.ListCourses(ctx, ownerID, pageToken)
}

func (svc *Service) ListRemoteAssignments(ctx context.Context, ownerID, apiCourseID, pageToken string) (AssignmentList, error) {
	return svc.classroom.ListAssignments(ctx, ownerID, apiCourseID, pageToken)
}

func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) GetSession(ctx context.Context, id string) (GradingSession, error) {
	return svc.repo.GetGradingSessionByID(ctx, id)
}

func (svc *Service) QueryCourseSessions(ctx context.Context, courseID string) ([]GradingSession, error) {
	return svc.repo.QueryCourseSessions(ctx, courseID)
}

func (svc *Service) GetSubmission(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

func (svc *Service) QuerySessionSubmissions(ctx context.Context, sessionID string) ([]Submission, error) {
	return svc.repo.QuerySessionSubmissions(ctx, sessionID)
}

func (svc *Service) SetSessionSyncState(ctx context.Context, sessionID string, state SyncState) (GradingSession, error) {
	session, err := svc.repo.GetGradingSessionByID(ctx, sessionID)
	if err != nil {
		return GradingSession{}, errors.Wrap(err, "loading grading session")
	}
	if session.SyncState == state {
		return session, nil
	}
	session.SyncState = state
	return svc.repo.UpdateGradingSession(ctx, session)
}

// SaveGrade records a locally entered grade and comment. Grades are bounded
// by the assignment's maximum; ungraded assignments accept no grade at all.
func (svc *Service) SaveGrade(ctx context.Context, subID string, grade *int, comment string) (Submission, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, subID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "loading submission")
	}
	session, err := svc.repo.GetGradingSessionByID(ctx, sub.SessionID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "loading grading session")
	}

	if grade != nil {
		if !session.IsGraded() {
			return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "grade", Error: "assignment is not graded"})
		}
		if *grade < 0 || *grade > session.MaxGrade {
			return Submission{}, core.NewValidationError(nil, core.FieldError{
				Field: "grade",
				Error: fmt.Sprintf("grade must be between 0 and %d", session.MaxGrade),
			})
		}
	}

	sub.Grade = grade
	sub.Comment = comment
	return svc.repo.UpdateSubmission(ctx, sub)
}
