package folio

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned for unknown ids and slugs, and for posts the
	// caller may not see.
	ErrNotFound = errors.New("not found")

	// ErrCategoryInUse blocks deleting a category that still owns posts.
	ErrCategoryInUse = errors.New("category still has posts")

	// ErrSelfDelete blocks an admin from deleting their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")

	// ErrInvalidCredentials is returned by Authenticate.
	ErrInvalidCredentials = errors.New("invalid email or password")

	errDuplicate = errors.New("duplicate value")
)

// ValidationError reports input the caller can fix. The originating form is
// re-rendered with Message; nothing is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// AsValidation returns the ValidationError wrapped in err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// isUniqueViolation matches the unique-constraint errors of the sqlite and
// postgres drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// duplicateError wraps a unique violation with the column that collided,
// matched against the driver's message.
type duplicateError struct {
	Column string
	err    error
}

func (e *duplicateError) Error() string { return "duplicate " + e.Column + ": " + e.err.Error() }
func (e *duplicateError) Unwrap() error { return errDuplicate }

func classifyUnique(err error, columns ...string) error {
	if !isUniqueViolation(err) {
		return err
	}
	msg := err.Error()
	for _, col := range columns {
		if strings.Contains(msg, col) {
			return &duplicateError{Column: col, err: err}
		}
	}
	return &duplicateError{Column: "", err: err}
}

func duplicateColumn(err error) (string, bool) {
	var de *duplicateError
	if errors.As(err, &de) {
		return de.Column, true
	}
	return "", false
}
