package model

import "errors"

// Errors shared by the training engine, the upsolve backlog and the CLI.
var (
	ErrValidation           = errors.New("validation failed")
	ErrInsufficientProblems = errors.New("not enough matching problems")
	ErrCatalogUnavailable   = errors.New("problem catalog unavailable")
	ErrSessionAlreadyActive = errors.New("a training session is already active")
	ErrUnknownProblem       = errors.New("unknown problem")
	ErrNoActiveSession      = errors.New("no active training session")
	ErrNotBound             = errors.New("no handle bound")
)
