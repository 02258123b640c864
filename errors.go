package devtrack

import "errors"

var (
	// ErrValidation is returned when a project name or a record is rejected
	// before anything is written.
	ErrValidation = errors.New("invalid project")

	// ErrIO is returned when the projects document cannot be read or written.
	ErrIO = errors.New("projects document i/o failure")

	// ErrConflict is returned when a versioned save finds that the project was
	// modified since it was read.
	ErrConflict = errors.New("project was modified by another save")

	// ErrNotFound is returned when a project name is not in the collection.
	ErrNotFound = errors.New("project not found")
)
