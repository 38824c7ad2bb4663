package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/gradespeed/gradespeed/core"
	"github.com/gradespeed/gradespeed/core/auth"
	"github.com/gradespeed/gradespeed/core/grading"
	"github.com/gradespeed/gradespeed/core/user"
	"github.com/gradespeed/gradespeed/storage/database/dummy"
	"github.com/gradespeed/gradespeed/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testDeps struct {
	conf       *core.Config
	db         *dummydb.DB
	usrRepo    user.Repository
	gradingSvc *grading.Service
	classroom  *fakeClassroom
	drive      *fakeDrive
	logger     *testutil.CaptureLogger
}

// fakeClassroom is a canned grading.ClassroomService.
type fakeClassroom struct {
	courses     map[string]grading.CourseResource
	assignments map[string]grading.AssignmentResource
	submissions map[string][]grading.SubmissionResource
	students    map[string]grading.StudentResource
	err         error
}

var _ grading.ClassroomService = (*fakeClassroom)(nil)

func (c *fakeClassroom) ListCourses(ctx context.Context, userID, pageToken string) (grading.CourseList, error) {
	if c.err != nil {
		return grading.CourseList{}, c.err
	}
	list := grading.CourseList{}
	for _, course := range c.courses {
		list.Courses = append(list.Courses, course)
	}
	return list, nil
}

func (c *fakeClassroom) GetCourse(ctx context.Context, userID, courseID string) (grading.CourseResource, error) {
	if c.err != nil {
		return grading.CourseResource{}, c.err
	}
	course, ok := c.courses[courseID]
	if !ok {
		return grading.CourseResource{}, fmt.Errorf("course %s: not found", courseID)
	}
	return course, nil
}

func (c *fakeClassroom) ListAssignments(ctx context.Context, userID, courseID, pageToken string) (grading.AssignmentList, error) {
	if c.err != nil {
		return grading.AssignmentList{}, c.err
	}
	list := grading.AssignmentList{}
	for _, assignment := range c.assignments {
		list.Assignments = append(list.Assignments, assignment)
	}
	return list, nil
}

func (c *fakeClassroom) GetAssignment(ctx context.Context, userID, courseID, assignmentID string) (grading.AssignmentResource, error) {
	if c.err != nil {
		return grading.AssignmentResource{}, c.err
	}
	assignment, ok := c.assignments[assignmentID]
	if !ok {
		return grading.AssignmentResource{}, fmt.Errorf("assignment %s: not found", assignmentID)
	}
	return assignment, nil
}

func (c *fakeClassroom) ListSubmissions(ctx context.Context, userID, courseID, assignmentID, pageToken string) (grading.SubmissionList, error) {
	if c.err != nil {
		return grading.SubmissionList{}, c.err
	}
	return grading.SubmissionList{Submissions: c.submissions[assignmentID]}, nil
}

func (c *fakeClassroom) GetSubmission(ctx context.Context, userID, courseID, assignmentID, submissionID string) (grading.SubmissionResource, error) {
	if c.err != nil {
		return grading.SubmissionResource{}, c.err
	}
	for _, sub := range c.submissions[assignmentID] {
		if sub.ID == submissionID {
			return sub, nil
		}
	}
	return grading.SubmissionResource{}, fmt.Errorf("submission %s: not found", submissionID)
}

func (c *fakeClassroom) GetStudent(ctx context.Context, userID, courseID, studentID string) (grading.StudentResource, error) {
	if c.err != nil {
		return grading.StudentResource{}, c.err
	}
	student, ok := c.students[studentID]
	if !ok {
		return grading.StudentResource{}, fmt.Errorf("student %s: not found", studentID)
	}
	return student, nil
}

// fakeDrive is a canned grading.DriveService.
type fakeDrive struct {
	files map[string]string
}

var _ grading.DriveService = (*fakeDrive)(nil)

func (d *fakeDrive) ExportPlainText(ctx context.Context, userID, fileID string) ([]byte, error) {
	content, ok := d.files[fileID]
	if !ok {
		return nil, &grading.ExportError{FileID: fileID, Unsupported: true, Err: fmt.Errorf("file %s: not exportable", fileID)}
	}
	return []byte(content), nil
}

func setup(t *testing.T) (Server, *testDeps) {
	t.Helper()

	conf := &core.Config{
		TestMode:  true,
		AppName:   "GradeSpeed",
		SecretKey: "s3cretK3y",
	}
	conf.Server.JWTExpirationDelta = time.Hour

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)

	classroom := &fakeClassroom{
		courses: map[string]grading.CourseResource{
			"gc1": {ID: "gc1", Name: "English"},
		},
		assignments: map[string]grading.AssignmentResource{
			"ga1": {
				ID:       "ga1",
				Title:    "Essay One",
				UIURL:    "https://classroom.google.com/c/gc1/a/ga1/details",
				MaxGrade: 100,
				Materials: []grading.Attachment{
					{ID: "r1", Name: "Essay"},
				},
			},
		},
		submissions: map[string][]grading.SubmissionResource{
			"ga1": {
				{ID: "gsub1", UserID: "gu1", Attachments: []grading.Attachment{{ID: "s1", Name: "Jane Doe - Essay"}}},
			},
		},
		students: map[string]grading.StudentResource{
			"gu1": {ID: "gu1", Name: "Jane Doe", PhotoURL: "//lh3.example.com/photo"},
		},
	}
	drive := &fakeDrive{
		files: map[string]string{
			"r1": "Hello\nWorld\n",
			"s1": "Hi\nthere\n",
		},
	}
	logger := testutil.NewCaptureLogger()
	gradingSvc := grading.NewService(dummydb.NewGradingRepository(db), classroom, drive, logger)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	deps := &testDeps{
		conf:       conf,
		db:         db,
		usrRepo:    usrRepo,
		gradingSvc: gradingSvc,
		classroom:  classroom,
		drive:      drive,
		logger:     logger,
	}
	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        user.NewService(usrRepo),
		AuthSvc:        auth.NewService(dummydb.NewTokenRepository(db), conf),
		GradingSvc:     gradingSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return server, deps
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
