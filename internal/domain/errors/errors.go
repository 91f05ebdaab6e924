package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrScoring            = errors.New("scoring failed")
	ErrStorage            = errors.New("storage failure")
	ErrVersionConflict    = errors.New("version conflict")
)
