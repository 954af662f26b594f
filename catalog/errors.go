package catalog

import "fmt"

// NotFoundError reports a failed referential lookup: an unknown
// category or robot, or a source file missing on disk.
type NotFoundError struct {
	Resource string // "category", "robot", "photo", "source file"
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Resource, e.Key)
}

// ValidationError reports rejected input, such as a disallowed file
// extension or a missing required field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
