// GO TESTING BASICS:
// 1. Test files MUST end in _test.go — Go's tooling auto-discovers them
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v  (-v = verbose, shows each test name)
package apperror

import (
	"errors"
	"testing"
)

// TABLE-DRIVEN TESTS:
// This is Go's idiomatic pattern for testing multiple cases.
// Instead of writing separate test functions, we define a slice of test
// cases and loop over them. Every case gets a name that shows up in the
// test output, and the assertion logic is written once.

func TestErrorsIs(t *testing.T) {
	// Each test case checks that errors.Is() correctly identifies the error type
	tests := []struct {
		name      string // Descriptive name for test output
		err       error  // The error to test
		target    error  // What we expect it to match
		wantMatch bool   // Should errors.Is() return true?
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("user", "musician@example.com"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("email", "email is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("group is full"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("the group owner cannot leave the group"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "DuplicateEmail wraps ErrDuplicateEmail",
			err:       DuplicateEmail(),
			target:    ErrDuplicateEmail,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials(),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "InactiveAccount wraps ErrInactiveAccount",
			err:       InactiveAccount(),
			target:    ErrInactiveAccount,
			wantMatch: true,
		},
		{
			name:      "InvalidToken wraps ErrInvalidToken",
			err:       InvalidToken(),
			target:    ErrInvalidToken,
			wantMatch: true,
		},
		{
			name:      "Storage wraps ErrStorage",
			err:       Storage(errors.New("disk full")),
			target:    ErrStorage,
			wantMatch: true,
		},
		{
			name:      "Unavailable wraps ErrUnavailable",
			err:       Unavailable("recording storage is not configured"),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "Unavailable does NOT match ErrStorage",
			err:       Unavailable("recording storage is not configured"),
			target:    ErrStorage,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("user", "musician@example.com"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "InvalidCredentials does NOT match ErrInvalidToken",
			err:       InvalidCredentials(),
			target:    ErrInvalidToken,
			wantMatch: false,
		},
		{
			name:      "DuplicateEmail does NOT match ErrConflict",
			err:       DuplicateEmail(),
			target:    ErrConflict,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestStorage_KeepsCauseInChain(t *testing.T) {
	cause := errors.New("database is locked")
	err := Storage(cause)

	// The underlying cause must survive for logging...
	if !errors.Is(err, cause) {
		t.Error("Storage() lost the underlying cause from the error chain")
	}
	// ...but the client-facing message must not contain it.
	if err.Error() != "a storage error occurred" {
		t.Errorf("Storage().Error() = %q, want a generic message", err.Error())
	}
}

func TestAppError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"DuplicateEmail", DuplicateEmail(), "email already registered"},
		{"InvalidCredentials", InvalidCredentials(), "incorrect email or password"},
		{"InactiveAccount", InactiveAccount(), "account is inactive"},
		{"InvalidToken", InvalidToken(), "could not validate credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
		})
	}
}

func TestValidationFailed_CarriesField(t *testing.T) {
	err := ValidationFailed("nickname", "nickname is required")
	if err.Field != "nickname" {
		t.Errorf("Field = %q, want %q", err.Field, "nickname")
	}
}
