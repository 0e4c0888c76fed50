// Package apperr defines the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	// ErrWrongKind is returned when an edit targets an item variant it does not apply to.
	ErrWrongKind = errors.New("edit does not apply to item type")
	// ErrInvalid is returned when an enumerated field is given a value outside its set.
	ErrInvalid = errors.New("invalid value")
	// ErrNoProject is returned by workspace operations when no project is open.
	ErrNoProject = errors.New("no project open")
)
