package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrAccessDenied is returned when the session lacks the permission.
	ErrAccessDenied = errors.New("access denied")

	// ErrLockTimeout is returned when an entity stays locked longer than
	// the configured lock TTL.
	ErrLockTimeout = errors.New("entity is locked")
)

// MessageLostUpdate is reported when an update is based on a stale copy.
const MessageLostUpdate = "Entity has been changed previously. Changes will cause lost updates."

// MessageDuplicateName is reported when creating an attribute whose name is
// already taken in the project.
const MessageDuplicateName = "Duplicate Attribute"

// ValidationError rejects an entity that cannot be stored as sent.
type ValidationError struct {
	Message string

	// Conflict marks errors caused by existing state rather than the input.
	Conflict bool
}

func (e *ValidationError) Error() string {
	return e.Message
}

func accessDenied(login, action, id string) error {
	if login == "" {
		login = "anonymous"
	}
	if id == "" {
		id = "new entity"
	}
	return fmt.Errorf("%w: user %s can't %s entity %s", ErrAccessDenied, login, action, id)
}
