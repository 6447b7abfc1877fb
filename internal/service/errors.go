package service

import "errors"

var (
	// ErrQueryBanned is returned before any catalog call when a search query is not allowed.
	ErrQueryBanned = errors.New("query not allowed")
	ErrNotFound    = errors.New("not found")
	ErrInvalid     = errors.New("invalid input")
)
