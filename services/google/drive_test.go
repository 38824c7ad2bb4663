package googlesvc

import (
	"testing"

	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
)

func TestClassifyExportErr(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		wantUnsupported bool
	}{
		{
			name:            "unsupported via top-level message",
			err:             &googleapi.Error{Code: 403, Message: unsupportedExportMessage},
			wantUnsupported: true,
		},
		{
			name: "unsupported via error item",
			err: &googleapi.Error{
				Code:   403,
				Errors: []googleapi.ErrorItem{{Reason: "fileNotExportable", Message: unsupportedExportMessage}},
			},
			wantUnsupported: true,
		},
		{
			name:            "other api error",
			err:             &googleapi.Error{Code: 429, Message: "Rate Limit Exceeded"},
			wantUnsupported: false,
		},
		{
			name:            "wrapped api error",
			err:             errors.Wrap(&googleapi.Error{Code: 403, Message: unsupportedExportMessage}, "exporting"),
			wantUnsupported: true,
		},
		{
			name:            "transport error",
			err:             errors.New("connection reset"),
			wantUnsupported: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expErr := classifyExportErr("f1", tt.err)
			if expErr.Unsupported != tt.wantUnsupported {
				t.Errorf("Unsupported = %v, want %v", expErr.Unsupported, tt.wantUnsupported)
			}
			if expErr.FileID != "f1" {
				t.Errorf("FileID = %q, want %q", expErr.FileID, "f1")
			}
		})
	}
}
