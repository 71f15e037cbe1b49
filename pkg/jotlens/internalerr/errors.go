package internalerr

import "errors"

// Sentinel errors shared by the store, the engine and its transports
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrUnavailable   = errors.New("backend unavailable")
)
