package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks malformed caller input or configuration data.
	ErrInvalidInput = errors.New("invalid input")
)
