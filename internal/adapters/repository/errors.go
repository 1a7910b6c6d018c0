package repository

import "errors"

var (
	// ErrNotFound marks a lookup for a game that was never analyzed.
	ErrNotFound = errors.New("report not found")
	// ErrInvalidReport marks a store attempt without a game ID.
	ErrInvalidReport = errors.New("invalid report")
)
