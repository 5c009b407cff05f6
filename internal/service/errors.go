package service

import "errors"

// Sentinel error kinds. The HTTP layer maps each kind to a status code and
// the standard error envelope; wrapped detail stays server-side except for
// the human-readable message attached with fmt.Errorf("%w: ...").
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("already exists")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenReused  = errors.New("refresh token is expired or already used")
	ErrUpload       = errors.New("upload failed")
	ErrInternal     = errors.New("internal error")
)
