package domain

import (
	"errors"
	"fmt"
)

// Error families. Concrete errors wrap one of these so transport code can
// map them with errors.Is without knowing every entity.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrPostNotFound    = fmt.Errorf("blog post %w", ErrNotFound)
	ErrContactNotFound = fmt.Errorf("contact message %w", ErrNotFound)

	ErrEmailTaken = fmt.Errorf("a user with this email %w", ErrConflict)
	ErrSlugTaken  = fmt.Errorf("a blog post with this slug %w", ErrConflict)
)

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrSelfDelete         = errors.New("you cannot delete your own account")
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordTooLong reports a password over MaxPasswordBytes against field.
func PasswordTooLong(field string) *ValidationError {
	return NewValidationError(FieldError{
		Field:   field,
		Message: fmt.Sprintf("%s cannot exceed %d bytes", field, MaxPasswordBytes),
	})
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Fields[0].Field, e.Fields[0].Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
