package model

import "fmt"

// The account store reports failures through these typed errors so
// callers can branch on the kind while still getting a message fit
// for direct display.

// ValidationError reports malformed input on a specific field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ConflictError reports a uniqueness violation on the email key.
type ConflictError struct {
	Email string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("an account with email %q already exists", e.Email)
}

// NotFoundError reports a lookup miss on the email key.
type NotFoundError struct {
	Email string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no account found for %q", e.Email)
}

// AuthenticationError reports a credential mismatch or a missing
// active session.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return e.Reason
}

// PersistenceError reports a failed write to the storage backend.
// Failed reads at load time are logged and treated as absent data
// instead; a lost write is surfaced because silently dropping it is
// worse than reporting it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
