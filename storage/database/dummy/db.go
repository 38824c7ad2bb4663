package dummydb

import (
	"sync"

	"github.com/gradespeed/gradespeed/core/auth"
	"github.com/gradespeed/gradespeed/core/grading"
	"github.com/gradespeed/gradespeed/core/user"
)

// DB is a map-backed stand-in for the real database, used in tests and
// local development.
type (
	DB struct {
		sync.RWMutex
		users       map[string]*user.User
		tokens      map[string]*auth.SocialToken
		courses     map[string]*grading.Course
		sessions    map[string]*grading.GradingSession
		templates   map[string]*grading.ReferenceTemplate
		submissions map[string]*grading.Submission
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:       make(map[string]*user.User),
		tokens:      make(map[string]*auth.SocialToken),
		courses:     make(map[string]*grading.Course),
		sessions:    make(map[string]*grading.GradingSession),
		templates:   make(map[string]*grading.ReferenceTemplate),
		submissions: make(map[string]*grading.Submission),
	}
	return db, nil
}
