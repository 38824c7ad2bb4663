package echoapi

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	// GoogleTokenRequest stores a delegated OAuth credential obtained by the
	// client-side consent flow.
	GoogleTokenRequest struct {
		AccessToken  string    `json:"access_token" validate:"required"`
		RefreshToken string    `json:"refresh_token"`
		ExpiresAt    time.Time `json:"expires_at" validate:"required"`
	}

	ImportSessionRequest struct {
		APICourseID     string `json:"api_course_id" validate:"required"`
		APIAssignmentID string `json:"api_assignment_id" validate:"required"`
		FullUpdate      bool   `json:"full_update"`
	}

	SyncStateRequest struct {
		SyncState string `json:"sync_state" validate:"required,oneof=U S"`
	}

	GradeRequest struct {
		Grade   *int   `json:"grade"`
		Comment string `json:"comment"`
	}

	DiffResponse struct {
		Diff []string `json:"diff"`
	}
)

func (r LoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r GoogleTokenRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r ImportSessionRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func (r SyncStateRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}
