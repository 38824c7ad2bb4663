package googlesvc

import (
	"context"
	"io/ioutil"

	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"

	"github.com/gradespeed/gradespeed/core/grading"
)

// unsupportedExportMessage is the message the Drive API returns for files
// that exist but cannot be exported to text (images, uploads, ...).
const unsupportedExportMessage = "Export only supports Docs Editors files."

type driveService struct {
	creds CredentialProvider
}

var _ grading.DriveService = (*driveService)(nil)

func NewDriveService(creds CredentialProvider) *driveService {
	return &driveService{creds: creds}
}

// ExportPlainText downloads a document as UTF-8 plain text. Failures come
// back as *grading.ExportError so callers can tell unsupported documents
// from systemic trouble (auth expiry, quota).
func (svc *driveService) ExportPlainText(ctx context.Context, userID, fileID string) ([]byte, error) {
	drv, err := newDriveService(ctx, svc.creds, userID)
	if err != nil {
		return nil, err
	}

	res, err := drv.Files.Export(fileID, "text/plain").Context(ctx).Download()
	if err != nil {
		return nil, classifyExportErr(fileID, err)
	}
	defer func() { _ = res.Body.Close() }()

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, &grading.ExportError{FileID: fileID, Err: errors.Wrap(err, "reading export body")}
	}
	return data, nil
}

func classifyExportErr(fileID string, err error) *grading.ExportError {
	expErr := &grading.ExportError{FileID: fileID, Err: err}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message == unsupportedExportMessage {
			expErr.Unsupported = true
			return expErr
		}
		for _, item := range apiErr.Errors {
			if item.Message == unsupportedExportMessage {
				expErr.Unsupported = true
				return expErr
			}
		}
	}
	return expErr
}
