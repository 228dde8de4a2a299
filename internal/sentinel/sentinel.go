package sentinel

import "errors"

// Sentinel dependency errors. Dependencies should return these (optionally wrapped)
// so services can translate them into domain errors exactly once.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrWithdrawn    = errors.New("withdrawn")
	ErrUnavailable  = errors.New("unavailable")
)
