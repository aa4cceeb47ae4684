package models

import "errors"

// Domain specific errors shared by repositories, services and handlers.
var (
	ErrNotFound    = errors.New("requested item not found")
	ErrConflict    = errors.New("item already exists or conflict")
	ErrBadRequest  = errors.New("bad request")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("upstream service unavailable")
)
