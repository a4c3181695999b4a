package models

import (
	"errors"
	"fmt"
)

// Error classes. Callers match them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

var (
	ErrIssueNotFound      = classify(ErrNotFound, "issue not found")
	ErrAssignmentNotFound = classify(ErrNotFound, "assignment not found")
	ErrUserNotFound       = classify(ErrNotFound, "user not found")
	ErrAlreadyVoted       = classify(ErrConflict, "already voted on this issue")
	ErrNoOpUpdate         = classify(ErrConflict, "update changes nothing")
	ErrInvalidTransition  = classify(ErrConflict, "status transition not allowed")
	ErrDuplicateUser      = classify(ErrConflict, "user with this mobile already exists")
	ErrNotAssignee        = classify(ErrForbidden, "assignment belongs to another gram sevak")
)

// classified is an error with a readable message that still matches
// its class.
type classified struct {
	class error
	msg   string
}

func classify(class error, msg string) error {
	return &classified{class: class, msg: msg}
}

func (e *classified) Error() string { return e.msg }
func (e *classified) Unwrap() error { return e.class }

// Invalid builds a validation error with a readable message.
func Invalid(format string, args ...any) error {
	return classify(ErrValidation, fmt.Sprintf(format, args...))
}
