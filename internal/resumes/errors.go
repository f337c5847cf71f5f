package resumes

import "errors"

var (
	// ErrNotFound indicates the resume or sub-item does not exist (the
	// referenced id may already be stale after a sibling write).
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates missing identifiers or a malformed payload.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict indicates a sub-collection write carried a revision that no
	// longer matches storage.
	ErrConflict = errors.New("revision conflict")
)
