package attribute

import "errors"

var (
	// ErrDuplicateName is reported when a new attribute reuses an existing name
	ErrDuplicateName = errors.New("Duplicate Attribute") //nolint:staticcheck // user-facing message

	// ErrEmptyName is reported when the attribute name is blank
	ErrEmptyName = errors.New("Enter valid attribute") //nolint:staticcheck // user-facing message

	// ErrNotPersisted is returned when removing an attribute without an ID
	ErrNotPersisted = errors.New("attribute has not been saved")

	// ErrIndexOutOfRange is returned by key/value edits with an invalid index
	ErrIndexOutOfRange = errors.New("key/value index out of range")
)

// SaveFailedError wraps a backend failure while creating or updating.
type SaveFailedError struct {
	Reason error
}

func (e *SaveFailedError) Error() string {
	return "Couldn't save attributes: " + reasonText(e.Reason)
}

func (e *SaveFailedError) Unwrap() error { return e.Reason }

// RemoveFailedError wraps a backend failure while deleting.
type RemoveFailedError struct {
	Reason error
}

func (e *RemoveFailedError) Error() string {
	return "Couldn't remove attribute: " + reasonText(e.Reason)
}

func (e *RemoveFailedError) Unwrap() error { return e.Reason }

func reasonText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
