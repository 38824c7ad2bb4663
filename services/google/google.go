// Package googlesvc implements the remote coursework and document API
// boundaries on top of the Google Classroom and Google Drive APIs.
package googlesvc

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"google.golang.org/api/classroom/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// CredentialProvider yields a delegated token source for a user. A user
// without a stored credential is a hard failure for any remote call.
type CredentialProvider interface {
	TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error)
}

const listPageSize = 30

func newClassroomService(ctx context.Context, creds CredentialProvider, userID string) (*classroom.Service, error) {
	ts, err := creds.TokenSource(ctx, userID)
	if err != nil {
		return nil, err
	}
	svc, err := classroom.NewService(ctx, option.WithTokenSource(ts))
	return svc, errors.Wrap(err, "building classroom service")
}

func newDriveService(ctx context.Context, creds CredentialProvider, userID string) (*drive.Service, error) {
	ts, err := creds.TokenSource(ctx, userID)
	if err != nil {
		return nil, err
	}
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	return svc, errors.Wrap(err, "building drive service")
}
