package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMoodOutOfRange     = errors.New("mood value must be an integer between 1 and 10")
	ErrMoodNotRated       = errors.New("mood has not been rated yet")
	ErrSessionNotFound    = errors.New("chat session not found")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
