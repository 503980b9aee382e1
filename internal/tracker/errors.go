package tracker

import "errors"

var (
	// ErrNoStore is returned by operations that need a store when none is open
	ErrNoStore = errors.New("no store open, open or create a store first")

	// ErrDuplicateName is returned when a project or task name is taken
	ErrDuplicateName = errors.New("name already exists")

	ErrEmptyName = errors.New("name is empty")

	// ErrNotFound is returned for unknown project or task names
	ErrNotFound = errors.New("not found")

	// ErrNotConfirmed is returned when a deletion was not confirmed
	ErrNotConfirmed = errors.New("deletion not confirmed")
)
