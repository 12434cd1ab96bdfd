package presence

import "errors"

var (
	// ErrDuplicateName is returned when a zone, group, room, or variable is
	// created with a name that already exists in its scope. The registry is
	// left untouched; the caller must not assume the new entity exists.
	ErrDuplicateName = errors.New("name already in use")
)
