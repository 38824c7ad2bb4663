package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/gradespeed/gradespeed/core"
	"github.com/gradespeed/gradespeed/core/user"
)

// CaptureLogger is a core.Logger that records every call by level.
type CaptureLogger struct {
	mu      sync.Mutex
	records map[string][]string
}

var _ core.Logger = (*CaptureLogger)(nil)

func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{records: make(map[string][]string)}
}

func (l *CaptureLogger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(args) > 0 {
		msg = fmt.Sprintf("%s %v", msg, args)
	}
	l.records[level] = append(l.records[level], msg)
}

func (l *CaptureLogger) Enable(bool)                            {}
func (l *CaptureLogger) Debug(msg string, args ...interface{})  { l.log("DEBUG", msg, args) }
func (l *CaptureLogger) Info(msg string, args ...interface{})   { l.log("INFO", msg, args) }
func (l *CaptureLogger) Warning(msg string, args ...interface{}) { l.log("WARNING", msg, args) }
func (l *CaptureLogger) Error(msg string, args ...interface{})  { l.log("ERROR", msg, args) }
func (l *CaptureLogger) Fatal(msg string, args ...interface{})  { l.log("FATAL", msg, args) }

// Count returns the number of records logged at the given level.
func (l *CaptureLogger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records[level])
}

func (l *CaptureLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[string][]string)
}

// CreateUser persists a user fixture or fails the test.
func CreateUser(t *testing.T, repo user.Repository, name, email, pwd string) user.User {
	t.Helper()
	svc := user.NewService(repo)
	usr, err := svc.Create(context.Background(), user.NewUser{Name: name, Email: email, Password: pwd})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
