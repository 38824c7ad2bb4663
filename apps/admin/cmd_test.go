package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"testing"

	"github.com/gradespeed/gradespeed/core"
	"github.com/gradespeed/gradespeed/core/auth"
	"github.com/gradespeed/gradespeed/core/grading"
	"github.com/gradespeed/gradespeed/core/user"
	logsvc "github.com/gradespeed/gradespeed/services/logger"
	"github.com/gradespeed/gradespeed/storage/database/dummy"
)

var usrRepo user.Repository

type cmdClassroom struct {
	courses     map[string]grading.CourseResource
	assignments map[string]grading.AssignmentResource
	submissions map[string][]grading.SubmissionResource
}

func (c *cmdClassroom) ListCourses(ctx context.Context, userID, pageToken string) (grading.CourseList, error) {
	return grading.CourseList{}, nil
}

func (c *cmdClassroom) GetCourse(ctx context.Context, userID, courseID string) (grading.CourseResource, error) {
	course, ok := c.courses[courseID]
	if !ok {
		return grading.CourseResource{}, fmt.Errorf("course %s: not found", courseID)
	}
	return course, nil
}

func (c *cmdClassroom) ListAssignments(ctx context.Context, userID, courseID, pageToken string) (grading.AssignmentList, error) {
	return grading.AssignmentList{}, nil
}

func (c *cmdClassroom) GetAssignment(ctx context.Context, userID, courseID, assignmentID string) (grading.AssignmentResource, error) {
	assignment, ok := c.assignments[assignmentID]
	if !ok {
		return grading.AssignmentResource{}, fmt.Errorf("assignment %s: not found", assignmentID)
	}
	return assignment, nil
}

func (c *cmdClassroom) ListSubmissions(ctx context.Context, userID, courseID, assignmentID, pageToken string) (grading.SubmissionList, error) {
	return grading.SubmissionList{Submissions: c.submissions[assignmentID]}, nil
}

func (c *cmdClassroom) GetSubmission(ctx context.Context, userID, courseID, assignmentID, submissionID string) (grading.SubmissionResource, error) {
	for _, sub := range c.submissions[assignmentID] {
		if sub.ID == submissionID {
			return sub, nil
		}
	}
	return grading.SubmissionResource{}, fmt.Errorf("submission %s: not found", submissionID)
}

func (c *cmdClassroom) GetStudent(ctx context.Context, userID, courseID, studentID string) (grading.StudentResource, error) {
	return grading.StudentResource{ID: studentID}, nil
}

type cmdDrive struct{}

func (d *cmdDrive) ExportPlainText(ctx context.Context, userID, fileID string) ([]byte, error) {
	return []byte("content\n"), nil
}

func setup(t *testing.T) (*commandLine, *dummydb.DB) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)

	conf := &core.Config{AppName: "GradeSpeed", SecretKey: "s3cret"}
	authSvc := auth.NewService(dummydb.NewTokenRepository(db), conf)

	classroom := &cmdClassroom{
		courses: map[string]grading.CourseResource{
			"gc1": {ID: "gc1", Name: "English"},
		},
		assignments: map[string]grading.AssignmentResource{
			"ga1": {ID: "ga1", Title: "Essay One", MaxGrade: 100},
		},
		submissions: map[string][]grading.SubmissionResource{
			"ga1": {{ID: "gsub1", UserID: "gu1"}},
		},
	}
	gradingSvc := grading.NewService(
		dummydb.NewGradingRepository(db),
		classroom,
		&cmdDrive{},
		logsvc.NewConsoleLogger(log.New(testWriter{t}, "", 0)),
	)

	return &commandLine{
		usrRepo:    usrRepo,
		authSvc:    authSvc,
		gradingSvc: gradingSvc,
	}, db
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runTests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("run() error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("run() error = %v, want %q", err, tt.wantErrStr)
				}
			default:
				if err != nil {
					t.Errorf("run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
	}
	runTests(t, cli, tests)
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a version", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a version"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	runTests(t, cli, tests)
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cr3tPwd"), nil }

	tests := []cliTest{
		{name: "missing email", args: []string{"adduser", "-name", "Jane"}, wantErr: errHelp},
		{name: "missing name", args: []string{"adduser", "-email", "jane@test.cd"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-email", "jane@test.cd", "-name", "Jane Doe"}},
		{name: "update", args: []string{"adduser", "-email", "jane@test.cd", "-name", "Jane D."}},
	}
	runTests(t, cli, tests)

	usr, err := usrRepo.GetUserByEmail(context.Background(), "jane@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if usr.Name != "Jane D." {
		t.Errorf("Name = %q, want %q", usr.Name, "Jane D.")
	}
	if err = usr.CheckPassword("s3cr3tPwd"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
}

func Test_commandLine_setToken(t *testing.T) {
	cli, _ := setup(t)
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("ya29.token"), nil }

	if err := cli.addUser("jane@test.cd", "Jane Doe", "s3cr3tPwd"); err != nil {
		t.Fatalf("addUser() failed: %v", err)
	}

	tests := []cliTest{
		{name: "missing email", args: []string{"settoken"}, wantErr: errHelp},
		{name: "unknown user", args: []string{"settoken", "-email", "nope@test.cd"}, wantErr: user.ErrNotFound},
		{name: "ok", args: []string{"settoken", "-email", "jane@test.cd", "-expires-in", "2"}},
	}
	runTests(t, cli, tests)

	ctx := context.Background()
	usr, err := usrRepo.GetUserByEmail(ctx, "jane@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if _, err = cli.authSvc.TokenSource(ctx, usr.ID); err != nil {
		t.Errorf("TokenSource() failed: %v", err)
	}
}

func Test_commandLine_importSession(t *testing.T) {
	cli, _ := setup(t)
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cr3tPwd"), nil }

	if err := cli.addUser("jane@test.cd", "Jane Doe", "s3cr3tPwd"); err != nil {
		t.Fatalf("addUser() failed: %v", err)
	}

	tests := []cliTest{
		{name: "missing flags", args: []string{"importsession", "-email", "jane@test.cd"}, wantErr: errHelp},
		{name: "unknown user", args: []string{"importsession", "-email", "nope@test.cd", "-course", "gc1", "-assignment", "ga1"}, wantErr: user.ErrNotFound},
		{name: "create", args: []string{"importsession", "-email", "jane@test.cd", "-course", "gc1", "-assignment", "ga1"}},
		{name: "resume", args: []string{"importsession", "-email", "jane@test.cd", "-course", "gc1", "-assignment", "ga1", "-full"}},
	}
	runTests(t, cli, tests)

	ctx := context.Background()
	usr, err := usrRepo.GetUserByEmail(ctx, "jane@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	course, err := cli.gradingSvc.EnsureCourse(ctx, usr.ID, "gc1")
	if err != nil {
		t.Fatalf("EnsureCourse() failed: %v", err)
	}
	sessions, err := cli.gradingSvc.QueryCourseSessions(ctx, course.ID)
	if err != nil {
		t.Fatalf("QueryCourseSessions() failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	subs, err := cli.gradingSvc.QuerySessionSubmissions(ctx, sessions[0].ID)
	if err != nil {
		t.Fatalf("QuerySessionSubmissions() failed: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("got %d submissions, want 1", len(subs))
	}
}
