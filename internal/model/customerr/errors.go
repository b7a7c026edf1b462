// Package customerr defines the recoverable error kinds the core surfaces
// to its callers. None of them should ever crash the process; they exist
// so front-ends can map failures to user-facing messages.
package customerr

import "fmt"

// ValidationError reports a rejected write (bad amount, empty category,
// missing date, non-positive limit).
type ValidationError struct {
	Err string
}

func (e *ValidationError) Error() string {
	return e.Err
}

// DuplicateEmailError reports a sign-up conflict.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email %s is already registered", e.Email)
}

// InvalidCredentialsError is deliberately uniform for unknown emails and
// wrong passwords.
type InvalidCredentialsError struct{}

func (e *InvalidCredentialsError) Error() string {
	return "invalid email or password"
}

// NotFoundError reports a lookup or delete of an absent id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %s not found", e.ID)
}

// CrossOwnerError reports an attempted operation on another user's
// partition. It must always fail loudly, never silently no-op.
type CrossOwnerError struct {
	ID string
}

func (e *CrossOwnerError) Error() string {
	return fmt.Sprintf("record %s belongs to another user", e.ID)
}
