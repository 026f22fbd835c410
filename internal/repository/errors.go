package repository

import "errors"

var (
	// ErrNotFound is returned when the targeted row does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint would be violated
	ErrDuplicate = errors.New("already exists")
)
