package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("Drive"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("username", "username is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("Existing user"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrAuth",
			err:       Unauthorized("Password incorrect"),
			target:    ErrAuth,
			wantMatch: true,
		},
		{
			name:      "Internal wraps ErrInternal",
			err:       Internal("Internal server error", errors.New("boom")),
			target:    ErrInternal,
			wantMatch: true,
		},
		{
			name:      "Internal keeps the underlying error in the chain",
			err:       Internal("Internal server error", ErrNotFound),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("Drive"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unauthorized does NOT match ErrConflict",
			err:       Unauthorized("Not a registered user"),
			target:    ErrConflict,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound names the resource",
			err:         NotFound("Drive"),
			wantMessage: "Drive not found",
		},
		{
			name:        "ValidationFailed uses the custom message",
			err:         ValidationFailed("username", "username must be an email"),
			wantMessage: "username must be an email",
		},
		{
			name:        "Conflict passes the message through",
			err:         Conflict("Existing user"),
			wantMessage: "Existing user",
		},
		{
			name:        "Unauthorized passes the message through",
			err:         Unauthorized("Password incorrect"),
			wantMessage: "Password incorrect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("Drive")
	if err.Unwrap() != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("username", "invalid email format")
	if err.Field != "username" {
		t.Errorf("Field = %q, want %q", err.Field, "username")
	}
}

func TestInternalHidesUnderlyingDetail(t *testing.T) {
	err := Internal("Internal server error", errors.New("dial tcp: refused"))
	if err.Error() != "Internal server error" {
		t.Errorf("Error() = %q, leaked the underlying detail", err.Error())
	}
}
