package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Services wrap these inside *AppError; handlers map them
// to HTTP status codes with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	// Authentication taxonomy.
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrInvalidToken       = errors.New("invalid token")

	// ErrStorage marks infrastructure failures (connectivity, unexpected
	// constraint violations). Never shown verbatim to clients.
	ErrStorage = errors.New("storage error")

	// ErrUnavailable marks a feature whose backing service isn't configured
	// on this deployment (e.g. recording uploads without object storage).
	// Unlike ErrStorage, the message is safe to show to clients.
	ErrUnavailable = errors.New("unavailable")
)

type AppError struct {
	Err     error  // sentinel from the list above
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// DuplicateEmail is returned when registration is attempted with an email
// that already has an account. Recoverable: the caller can pick another.
func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: "email already registered",
		Field:   "email",
	}
}

// InvalidCredentials covers unknown email, wrong password, and password
// login on a provider-only account. One deliberately vague message for all
// three so responses don't reveal which emails have accounts.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "incorrect email or password",
	}
}

// InactiveAccount is returned only after the password verified — a caller
// who doesn't know the password never learns the account is deactivated.
func InactiveAccount() *AppError {
	return &AppError{
		Err:     ErrInactiveAccount,
		Message: "account is inactive",
	}
}

// InvalidToken covers every token failure: bad signature, expired,
// malformed, or a subject that no longer exists. A token for a deleted
// user is indistinguishable from a forged one.
func InvalidToken() *AppError {
	return &AppError{
		Err:     ErrInvalidToken,
		Message: "could not validate credentials",
	}
}

// Unavailable is returned when an optional backing service is not
// configured. HTTP handlers map this to 503 Service Unavailable.
func Unavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}

// Storage wraps an unexpected database error. The underlying cause stays
// in the chain for logs; the message shown to clients is generic.
func Storage(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrStorage, err),
		Message: "a storage error occurred",
	}
}
