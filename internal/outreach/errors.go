package outreach

import "errors"

var (
	// ErrNoTargets is returned when a dispatch is requested with an empty
	// target list. It is raised before any per-target action runs.
	ErrNoTargets = errors.New("dispatch target list is empty")

	// ErrInvalidInput marks bad caller-supplied parameters.
	ErrInvalidInput = errors.New("invalid input")
)
